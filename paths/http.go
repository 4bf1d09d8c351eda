package paths

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	cache     map[string][]byte
	cacheLock sync.Mutex
)

// openHTTP fetches a sprite over HTTP. Successful responses are cached for
// the lifetime of the process.
func openHTTP(url string) (io.ReadCloser, error) {
	cacheLock.Lock()
	defer cacheLock.Unlock()

	if cache == nil {
		cache = make(map[string][]byte)
	}
	if buf, ok := cache[url]; ok {
		glog.V(2).Infof("paths: %q served from cache", url)
		return io.NopCloser(bytes.NewReader(buf)), nil
	}

	response, err := http.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "paths: failed to fetch %q", url)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		e := os.ErrInvalid
		if response.StatusCode == http.StatusNotFound {
			e = os.ErrNotExist
		}
		return nil, errors.Wrapf(e, "paths: fetching %q: http status %v, want 200", url, response.StatusCode)
	}

	buf, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "paths: failed to read %q", url)
	}
	cache[url] = buf
	glog.V(2).Infof("paths: fetched %q, %d bytes", url, len(buf))
	return io.NopCloser(bytes.NewReader(buf)), nil
}
