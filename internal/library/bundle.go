package library

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Bundle hands out the stock photos shipped with the app in random order.
// Every photo is used once before any repeats, and a reshuffle never starts
// with the photo that was just shown.
type Bundle struct {
	mu    sync.Mutex
	dir   string
	rng   *rand.Rand
	queue []string
	last  string
}

func NewBundle(dir string) *Bundle {
	return NewBundleWithSeed(dir, time.Now().UnixNano())
}

func NewBundleWithSeed(dir string, seed int64) *Bundle {
	return &Bundle{dir: dir, rng: rand.New(rand.NewSource(seed))}
}

// Next returns the path of the next photo.
func (b *Bundle) Next() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 {
		photos, err := b.scan()
		if err != nil {
			return "", err
		}
		b.rng.Shuffle(len(photos), func(i, j int) {
			photos[i], photos[j] = photos[j], photos[i]
		})
		if len(photos) > 1 && photos[0] == b.last {
			photos[0], photos[len(photos)-1] = photos[len(photos)-1], photos[0]
		}
		b.queue = photos
	}

	next := b.queue[0]
	b.queue = b.queue[1:]
	b.last = next
	return next, nil
}

func (b *Bundle) scan() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("read bundled photos: %w", err)
	}

	var photos []string
	for _, e := range entries {
		if e.IsDir() || !photoExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		photos = append(photos, filepath.Join(b.dir, e.Name()))
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("no bundled photos in %s", b.dir)
	}
	sort.Strings(photos)
	return photos, nil
}
