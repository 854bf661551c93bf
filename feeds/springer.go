package feeds

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/miku/hepkit"
	"github.com/sethgrid/pester"
	"github.com/sirupsen/logrus"
)

var ErrUnsafePath = errors.New("unsafe path in package")

// Doer abstracts https://pkg.go.dev/net/http#Client.Do.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// SpringerFetcher retrieves Springer delivery packages, zip files with one
// XML file per article, chapter or book, and unpacks them into a cache
// directory.
type SpringerFetcher struct {
	Client   Doer
	CacheDir string
	Logger   logrus.FieldLogger
}

// NewSpringerFetcher sets up a fetcher with a retrying HTTP client. If
// cacheDir is empty, a directory below the XDG cache home is used.
func NewSpringerFetcher(cacheDir string, maxRetries int, timeout time.Duration) (*SpringerFetcher, error) {
	if cacheDir == "" {
		dir, err := xdg.CacheFile(filepath.Join(hepkit.AppName, "springer"))
		if err != nil {
			return nil, err
		}
		cacheDir = dir
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = maxRetries
	client.RetryOnHTTP429 = true
	client.Timeout = timeout
	return &SpringerFetcher{
		Client:   client,
		CacheDir: cacheDir,
		Logger:   logrus.StandardLogger(),
	}, nil
}

// IsRemote reports whether a location needs to be downloaded first.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Resolve turns a location, a URL, a zip package or a plain file, into a
// list of local files to convert.
func (sf *SpringerFetcher) Resolve(ctx context.Context, location string) ([]string, error) {
	filename := location
	if IsRemote(location) {
		var err error
		if filename, err = sf.Fetch(ctx, location); err != nil {
			return nil, err
		}
	}
	if strings.EqualFold(filepath.Ext(filename), ".zip") {
		return sf.Unpack(filename)
	}
	return []string{filename}, nil
}

// Fetch downloads a package into the cache directory, unless it is already
// there, and returns the local filename.
func (sf *SpringerFetcher) Fetch(ctx context.Context, link string) (string, error) {
	name := path.Base(link)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("cannot derive filename from %s", link)
	}
	dst := filepath.Join(sf.CacheDir, "downloads", name)
	if fi, err := os.Stat(dst); err == nil && fi.Size() > 0 {
		sf.Logger.WithField("file", dst).Debug("using cached package")
		return dst, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", fmt.Sprintf("%s/%s", hepkit.AppName, hepkit.Version))
	resp, err := sf.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s, status code: %d", link, resp.StatusCode)
	}
	wip := dst + ".wip"
	f, err := os.Create(wip)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(wip, dst)
	}
	if err != nil {
		_ = os.Remove(wip)
		return "", err
	}
	sf.Logger.WithFields(logrus.Fields{"url": link, "bytes": n}).Info("fetched package")
	return dst, nil
}

// Unpack extracts a package into the cache directory.
func (sf *SpringerFetcher) Unpack(filename string) ([]string, error) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	dir := filepath.Join(sf.CacheDir, "packages", base)
	files, err := SpringerPackage(filename, dir)
	if err != nil {
		return nil, err
	}
	sf.Logger.WithFields(logrus.Fields{"package": filename, "files": len(files)}).Info("unpacked package")
	return files, nil
}

// SpringerPackage extracts all XML files from a zip package into dir and
// returns their paths, sorted. Other members, like PDFs or images, are
// ignored.
func SpringerPackage(filename, dir string) ([]string, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("package %s: %w", filename, err)
	}
	defer zr.Close()
	var files []string
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !strings.EqualFold(path.Ext(zf.Name), ".xml") {
			continue
		}
		dst, err := safeJoin(dir, zf.Name)
		if err != nil {
			return nil, err
		}
		if err := extract(zf, dst); err != nil {
			return nil, fmt.Errorf("package %s: %w", filename, err)
		}
		files = append(files, dst)
	}
	sort.Strings(files)
	return files, nil
}

// safeJoin joins a member name to dir, rejecting names that would end up
// outside of dir.
func safeJoin(dir, name string) (string, error) {
	dst := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, dst)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return dst, nil
}

func extract(zf *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
