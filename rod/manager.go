package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultRecycleAfter is the number of pages rendered before the browser
// process is replaced. Chrome's memory baseline keeps growing under load
// even when pages are closed.
const DefaultRecycleAfter = 75

// browserManager owns the Chrome process and swaps it for a fresh one
// every recycleAfter pages.
type browserManager struct {
	mu           sync.Mutex
	browser      *rod.Browser
	launcher     *launcher.Launcher
	pages        int
	recycleAfter int
	closed       bool
}

func newBrowserManager(recycleAfter int) (*browserManager, error) {
	m := &browserManager{recycleAfter: recycleAfter}
	browser, l, err := launchBrowser()
	if err != nil {
		return nil, err
	}
	m.browser, m.launcher = browser, l
	return m, nil
}

// acquire returns the browser to render the next page with, recycling it
// first if the page budget is spent.
func (m *browserManager) acquire() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("browser closed")
	}

	if m.recycleAfter > 0 && m.pages >= m.recycleAfter {
		// Keep the old browser if a new one can't be started.
		if browser, l, err := launchBrowser(); err == nil {
			_ = m.browser.Close()
			m.launcher.Kill()
			m.browser, m.launcher = browser, l
			m.pages = 0
		}
	}

	m.pages++
	return m.browser, nil
}

func (m *browserManager) close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	err := m.browser.Close()
	m.launcher.Kill()
	return err
}

// launchBrowser starts headless Chrome with flags that keep background
// tabs from being throttled.
func launchBrowser() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, l, nil
}
