package browser

import (
	"fmt"
	"log"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/Candra0x6/BusinessScap-Maps/config"
)

// Browser owns one Chrome instance. Each keyword run gets its own
// Browser so parallel workers never share a tab.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      *config.BrowserConfig
}

// New launches Chrome with the configured window and profile settings.
// A system Chrome/Chromium is preferred; rod downloads its own build
// when none is installed.
func New(cfg *config.BrowserConfig) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true).
		Leakless(false). // leakless binary trips antivirus scanners
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("disable-popup-blocking").
		Set("mute-audio").
		Set("lang", "en-US").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight))

	if cfg.UserDataDir != "" {
		if err := os.MkdirAll(cfg.UserDataDir, 0755); err != nil {
			log.Printf("Warning: Failed to create user data directory %s: %v\n", cfg.UserDataDir, err)
		} else {
			l = l.UserDataDir(cfg.UserDataDir)
		}
	}

	if bin := findChrome(); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Browser{browser: b, launcher: l, cfg: cfg}, nil
}

// findChrome checks the usual install locations, Linux first.
func findChrome() string {
	paths := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}
	if username := os.Getenv("USERNAME"); username != "" {
		paths = append(paths, `C:\Users\`+username+`\AppData\Local\Google\Chrome\Application\chrome.exe`)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// NewSession opens a fresh tab prepared for map scraping: webdriver
// flag hidden, user agent and viewport applied.
func (b *Browser) NewSession() (*Session, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, classifyErr(err, -1)
	}

	if _, err := page.EvalOnNewDocument(stealthJS); err != nil {
		log.Printf("Warning: Failed to install stealth script: %v\n", err)
	}

	if b.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.cfg.UserAgent}); err != nil {
			log.Printf("Warning: Failed to set user agent: %v\n", err)
		}
	}

	if b.cfg.WindowWidth > 0 && b.cfg.WindowHeight > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             b.cfg.WindowWidth,
			Height:            b.cfg.WindowHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			log.Printf("Warning: Failed to set viewport: %v\n", err)
		}
	}

	return &Session{page: page, timeout: b.cfg.PageTimeout()}, nil
}

// Close shuts the browser down and kills the launched process.
func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	return err
}

const stealthJS = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`
