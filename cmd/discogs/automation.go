// Package discogs automates downloading a collection export CSV from
// Discogs with a headless browser.
package discogs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

const (
	defaultAutomationTimeout = 3 * time.Minute
	exportPollInterval       = 3 * time.Second
	downloadPollInterval     = 2 * time.Second

	discogsLoginURL  = "https://www.discogs.com/login"
	discogsExportURL = "https://www.discogs.com/settings/exports"
)

var (
	chromedpExecAllocator = chromedp.NewExecAllocator
	chromedpContext       = chromedp.NewContext
	chromedpRunner        = chromedp.Run
)

// AutomationOptions holds configuration for Discogs automation
type AutomationOptions struct {
	Username    string
	Password    string
	DownloadDir string
	Headless    bool
	Timeout     time.Duration
}

// AutomateDiscogsExport orchestrates the full automation workflow
func AutomateDiscogsExport(parentCtx context.Context, opts AutomationOptions) (string, error) {
	if opts.Username == "" || opts.Password == "" {
		return "", errors.New("discogs automation requires both username and password")
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultAutomationTimeout
	}

	ctx, cancel := context.WithTimeout(parentCtx, timeout)
	defer cancel()

	downloadDir, cleanup, err := prepareDownloadDir(opts.DownloadDir)
	if err != nil {
		return "", err
	}
	defer func() {
		if cleanup != nil {
			cleanup()
		}
	}()
	slog.Info("Prepared Discogs download directory", "path", downloadDir, "headless", opts.Headless)

	allocCtx, cancelAllocator := chromedpExecAllocator(ctx, buildExecAllocatorOptions(opts)...)
	defer cancelAllocator()

	browserCtx, cancelBrowser := chromedpContext(allocCtx)
	defer cancelBrowser()

	if err := configureDownloadDirectory(browserCtx, downloadDir); err != nil {
		return "", err
	}

	if err := performDiscogsLogin(browserCtx, opts); err != nil {
		return "", err
	}

	if err := requestCollectionExport(browserCtx); err != nil {
		return "", err
	}

	csvPath, err := waitForDownload(browserCtx, downloadDir)
	if err != nil {
		return "", err
	}

	finalPath, err := moveDownloadedCSV(csvPath, opts.DownloadDir)
	if err != nil {
		return "", err
	}

	slog.Info("Discogs export completed", "csv_path", finalPath)
	return finalPath, nil
}

func buildExecAllocatorOptions(opts AutomationOptions) []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("no-default-browser-check", true),
	}
}

func prepareDownloadDir(path string) (string, func(), error) {
	if path != "" {
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", nil, fmt.Errorf("failed to create download directory: %w", err)
		}
		return filepath.Clean(path), nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "orpheus-discogs-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary download directory: %w", err)
	}

	return tmpDir, func() { _ = os.RemoveAll(tmpDir) }, nil
}

func configureDownloadDirectory(ctx context.Context, downloadDir string) error {
	action := browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
		WithDownloadPath(downloadDir).
		WithEventsEnabled(true)
	slog.Debug("Configuring download directory", "path", downloadDir)
	if err := chromedpRunner(ctx, action); err != nil {
		return fmt.Errorf("failed to configure download directory: %w", err)
	}
	return nil
}

func performDiscogsLogin(ctx context.Context, opts AutomationOptions) error {
	slog.Info("Logging in to Discogs", "username", opts.Username)

	if err := chromedpRunner(ctx, chromedp.Navigate(discogsLoginURL)); err != nil {
		return fmt.Errorf("failed to open Discogs login page: %w", err)
	}

	usernameSelector, err := waitForSelector(ctx, []string{
		`//input[@id="username"]`,
		`//input[@name="username"]`,
		`//input[@autocomplete="username"]`,
	}, "username field")
	if err != nil {
		return err
	}

	if err := chromedpRunner(ctx, chromedp.SendKeys(usernameSelector, opts.Username, chromedp.BySearch)); err != nil {
		return fmt.Errorf("failed to enter username: %w", err)
	}

	passwordSelector, err := waitForSelector(ctx, []string{
		`//input[@id="password"]`,
		`//input[@name="password"]`,
		`//input[@type="password"]`,
	}, "password field")
	if err != nil {
		return err
	}

	if err := chromedpRunner(ctx, chromedp.SendKeys(passwordSelector, opts.Password, chromedp.BySearch)); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}

	buttonSelector, err := waitForSelector(ctx, []string{
		`//button[@type='submit' and contains(., 'Log')]`,
		`//form[@id='login']//button[@type='submit']`,
		`form#login button[type=submit]`,
	}, "login button")
	if err != nil {
		return err
	}

	slog.Info("Clicking login button", "selector", buttonSelector)
	if err := chromedpRunner(ctx, chromedp.Click(buttonSelector, chromedp.BySearch)); err != nil {
		return fmt.Errorf("failed to click login: %w", err)
	}

	_ = chromedpRunner(ctx, chromedp.Sleep(2*time.Second))

	if err := waitForLoginSuccess(ctx); err != nil {
		return err
	}

	slog.Info("Discogs login completed")
	return nil
}

func waitForLoginSuccess(ctx context.Context) error {
	timeout := 30 * time.Second
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		var currentURL string
		_ = chromedpRunner(ctx, chromedp.Location(&currentURL))

		slog.Debug("Checking login status", "url", currentURL)

		if currentURL != "" && !strings.Contains(currentURL, "/login") {
			slog.Info("Successfully logged in to Discogs", "url", currentURL)
			return nil
		}

		var hasError bool
		_ = chromedpRunner(ctx, chromedp.Evaluate(`
			(function() {
				const errorMsg = document.querySelector('.validation_error, .form-error, .error');
				return errorMsg !== null;
			})()
		`, &hasError))

		if hasError {
			var errorText string
			_ = chromedpRunner(ctx, chromedp.Evaluate(`
				(function() {
					const errorMsg = document.querySelector('.validation_error, .form-error, .error');
					return errorMsg ? errorMsg.textContent.trim() : '';
				})()
			`, &errorText))
			return fmt.Errorf("login error: %s", errorText)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("login canceled: %w", ctx.Err())
		case <-ticker.C:
			if time.Now().After(deadline) {
				return errors.New("timeout waiting for Discogs login")
			}
		}
	}
}

func waitForSelector(ctx context.Context, selectors []string, description string) (string, error) {
	slog.Debug("Waiting for selector", "desc", description, "selectors", strings.Join(selectors, " | "))

	timeout := 10 * time.Second
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		for _, sel := range selectors {
			var exists bool

			if strings.HasPrefix(sel, "//") {
				checkScript := fmt.Sprintf(`!!document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`, sel)
				if err := chromedpRunner(ctx, chromedp.Evaluate(checkScript, &exists)); err == nil && exists {
					slog.Debug("Found selector", "desc", description, "selector", sel)
					return sel, nil
				}
			} else {
				checkScript := fmt.Sprintf(`!!document.querySelector(%q)`, sel)
				if err := chromedpRunner(ctx, chromedp.Evaluate(checkScript, &exists)); err == nil && exists {
					slog.Debug("Found selector", "desc", description, "selector", sel)
					return sel, nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("selector wait canceled for %s: %w", description, ctx.Err())
		case <-ticker.C:
			if time.Now().After(deadline) {
				var currentURL string
				_ = chromedpRunner(ctx, chromedp.Location(&currentURL))
				slog.Debug("Selector timeout", "desc", description, "url", currentURL)
				return "", fmt.Errorf("timeout waiting for %s", description)
			}
		}
	}
}

// requestCollectionExport triggers a new collection export and clicks
// its download link once Discogs has finished generating the file.
func requestCollectionExport(ctx context.Context) error {
	slog.Info("Requesting collection export")

	if err := chromedpRunner(ctx, chromedp.Navigate(discogsExportURL)); err != nil {
		return fmt.Errorf("failed to open export page: %w", err)
	}

	requestSelector, err := waitForSelector(ctx, []string{
		`//button[contains(., 'Request Data Export')]`,
		`//input[@type='submit' and contains(@value, 'Request')]`,
		`//button[@type='submit' and contains(., 'Export')]`,
	}, "export request button")
	if err != nil {
		return err
	}

	if err := chromedpRunner(ctx, chromedp.Click(requestSelector, chromedp.BySearch)); err != nil {
		return fmt.Errorf("failed to request export: %w", err)
	}

	downloadSelector, err := waitForDownloadLink(ctx)
	if err != nil {
		return err
	}

	// Clicking the link starts the download; navigation may abort.
	if err := chromedpRunner(ctx, chromedp.Click(downloadSelector, chromedp.BySearch)); err != nil {
		if !strings.Contains(err.Error(), "ERR_ABORTED") {
			return fmt.Errorf("failed to click download link: %w", err)
		}
		slog.Debug("Navigation aborted (expected - download triggered)", "error", err)
	}

	slog.Info("Export download triggered")
	return nil
}

// waitForDownloadLink polls the export list until the generated file's
// download link appears. Discogs builds exports asynchronously so this
// can take a while; the page is reloaded between polls.
func waitForDownloadLink(ctx context.Context) (string, error) {
	start := time.Now()
	ticker := time.NewTicker(exportPollInterval)
	defer ticker.Stop()

	selectors := []string{
		`//a[contains(@href, '/export/') and contains(., 'Download')]`,
		`//td[contains(@class, 'download')]//a`,
	}

	tries := 0
	for {
		for _, sel := range selectors {
			var exists bool
			checkScript := fmt.Sprintf(`!!document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`, sel)
			if err := chromedpRunner(ctx, chromedp.Evaluate(checkScript, &exists)); err == nil && exists {
				slog.Info("Export ready for download", "waited", time.Since(start))
				return sel, nil
			}
		}

		if tries%5 == 0 {
			slog.Info("Waiting for Discogs to generate the export", "elapsed", time.Since(start))
		}
		tries++

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timed out waiting for export generation: %w", ctx.Err())
		case <-ticker.C:
			_ = chromedpRunner(ctx, chromedp.Reload())
		}
	}
}

func waitForDownload(ctx context.Context, downloadDir string) (string, error) {
	start := time.Now()
	ticker := time.NewTicker(downloadPollInterval)
	defer ticker.Stop()

	tries := 0
	for {
		path, err := findDownloadedCSV(downloadDir, start)
		if err == nil {
			slog.Info("Discogs export download completed", "path", path, "waited", time.Since(start))
			return path, nil
		}

		if tries%5 == 0 {
			slog.Info("Waiting for Discogs export download", "elapsed", time.Since(start))
		}
		tries++

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timed out waiting for Discogs export download: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func findDownloadedCSV(downloadDir string, startTime time.Time) (string, error) {
	entries, err := os.ReadDir(downloadDir)
	if err != nil {
		return "", fmt.Errorf("failed to read download directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		// Match discogs export CSVs but not partial downloads
		if strings.HasPrefix(name, "discogs-") &&
			strings.HasSuffix(name, ".csv") &&
			!strings.HasSuffix(name, ".crdownload") {
			info, err := entry.Info()
			if err != nil {
				slog.Debug("Failed to get file info", "name", name, "error", err)
				continue
			}

			if info.ModTime().After(startTime) {
				slog.Debug("Found downloaded CSV file", "name", name, "modTime", info.ModTime())
				return filepath.Join(downloadDir, name), nil
			}
			slog.Debug("Skipping stale CSV file", "name", name, "modTime", info.ModTime(), "startTime", startTime)
		}
	}

	return "", errors.New("CSV file not found yet")
}

func moveDownloadedCSV(csvPath, requestedDir string) (string, error) {
	targetDir := requestedDir
	if targetDir == "" {
		targetDir = "exports"
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create target directory: %w", err)
	}

	targetCSVPath := filepath.Join(targetDir, "discogs_collection.csv")

	if csvPath != targetCSVPath {
		if err := os.Rename(csvPath, targetCSVPath); err != nil {
			if copyErr := copyFile(csvPath, targetCSVPath); copyErr != nil {
				return "", fmt.Errorf("failed to move CSV: %v (copy error: %w)", err, copyErr)
			}
			_ = os.Remove(csvPath)
		}
	}

	return targetCSVPath, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
