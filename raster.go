package html2uri

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2uri/internal/process"
)

// rasterizer abstracts the image decode and draw steps to allow testing
// without a browser.
type rasterizer interface {
	// Rasterize decodes the image at src, draws it at the origin of a fresh
	// width x height surface and returns the surface as a PNG data URI.
	Rasterize(ctx context.Context, src string, width, height int) (string, error)
	Close() error
}

// Compile-time interface check.
var _ rasterizer = (*rodRasterizer)(nil)

// rasterizeJS runs inside the page. Awaiting the image decode is the only
// suspension point; the canvas is released before the promise settles.
const rasterizeJS = `(src, width, height) => new Promise((resolve, reject) => {
	const img = new Image();
	img.onload = () => {
		const canvas = document.createElement('canvas');
		canvas.width = width;
		canvas.height = height;
		try {
			const ctx = canvas.getContext('2d');
			if (!ctx) {
				throw new Error('2d context unavailable');
			}
			ctx.drawImage(img, 0, 0);
			resolve(canvas.toDataURL('image/png'));
		} catch (e) {
			reject(e);
		} finally {
			canvas.width = 0;
			canvas.height = 0;
		}
	};
	img.onerror = () => reject(new Error('image decode failed'));
	img.src = src;
})`

// browserOptions configures the Chrome launch.
type browserOptions struct {
	bin       string // empty = ROD_BROWSER_BIN or rod-managed Chromium
	noSandbox bool
}

// rodRasterizer rasterizes through headless Chrome via go-rod.
// Rod downloads Chromium on first run if none is found.
// Every request gets its own page and canvas.
type rodRasterizer struct {
	opts     browserOptions
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// newRodRasterizer creates a rodRasterizer. The browser starts lazily.
func newRodRasterizer(opts browserOptions) *rodRasterizer {
	return &rodRasterizer{opts: opts}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRasterizer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	bin := r.opts.bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if r.opts.noSandbox || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Rasterize opens a blank page, hands src to an image decode and returns
// the extracted surface.
func (r *rodRasterizer) Rasterize(ctx context.Context, src string, width, height int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return "", err
	}

	// The page is created without ctx so that it can still be closed
	// after ctx is canceled.
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	// Closing the page releases the surface on every path.
	defer func() { _ = page.Close() }()

	res, err := page.Context(ctx).Evaluate(rod.Eval(rasterizeJS, src, width, height).ByPromise())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", evalError(err)
	}

	return res.Value.Str(), nil
}

// evalError extracts the in-page exception text when there is one.
func evalError(err error) error {
	var evalErr *rod.EvalError
	if errors.As(err, &evalErr) && evalErr.Exception != nil {
		return errors.New(evalErr.Exception.Description)
	}
	return err
}

// Close releases browser resources and kills the browser process group.
func (r *rodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}
