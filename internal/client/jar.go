package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FileJar is a cookie jar that keeps the cookies of every origin it talks to
// in a JSON file, so a login survives between runs.
type FileJar struct {
	mu   sync.Mutex
	jar  *cookiejar.Jar
	path string
	// origin -> cookies last seen for it
	saved map[string][]savedCookie
}

// NewFileJar opens the jar stored at path. A missing file is an empty jar.
func NewFileJar(path string) (*FileJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	j := &FileJar{jar: jar, path: path, saved: make(map[string][]savedCookie)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}
	if err := json.Unmarshal(data, &j.saved); err != nil {
		return nil, fmt.Errorf("decode cookie file %s: %w", path, err)
	}

	for origin, cookies := range j.saved {
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}
		hc := make([]*http.Cookie, 0, len(cookies))
		for _, c := range cookies {
			hc = append(hc, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
		}
		jar.SetCookies(u, hc)
	}
	return j, nil
}

// SetCookies implements http.CookieJar and writes the result to disk.
func (j *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)

	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
	current := j.jar.Cookies(&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"})
	if len(current) == 0 {
		delete(j.saved, origin)
	} else {
		list := make([]savedCookie, 0, len(current))
		for _, c := range current {
			list = append(list, savedCookie{Name: c.Name, Value: c.Value})
		}
		j.saved[origin] = list
	}

	// A failed write only costs the shopper a login next run.
	_ = j.write()
}

// Cookies implements http.CookieJar.
func (j *FileJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *FileJar) write() error {
	if j.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(j.saved, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(j.path, data, 0o600)
}
