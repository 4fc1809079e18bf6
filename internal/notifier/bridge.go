package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/models"
)

const (
	channelDir   = "channel"
	eventFileExt = ".json"
	tmpFileExt   = ".tmp"

	// DefaultEventTTL is how long event files are kept when no TTL is given.
	DefaultEventTTL = time.Minute
)

// ProfileBridge relays hub events between client processes sharing one
// profile directory.
//
// Events published by local endpoints are written as small JSON files into
// <profile>/channel. A fsnotify watcher picks up files written by other
// processes and republishes them into the local hub. Files older than the
// TTL are pruned by whichever process notices them first.
type ProfileBridge struct {
	dir     string
	process string
	ttl     time.Duration
	seq     atomic.Uint64

	endpoint *Endpoint
	watcher  *fsnotify.Watcher

	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewProfileBridge creates <profileDir>/channel if needed and joins hub.
// Call Start to begin relaying.
func NewProfileBridge(hub *Hub, profileDir string, ttl time.Duration, log *logger.Logger) (*ProfileBridge, error) {
	if profileDir == "" {
		return nil, errors.New("profile dir is required")
	}
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}

	dir := filepath.Join(profileDir, channelDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating channel dir: %w", err)
	}

	b := &ProfileBridge{
		dir:     dir,
		process: utils.NewUUIDGenerator().Generate(),
		ttl:     ttl,
		logger:  log,
	}
	b.endpoint = hub.Join("bridge:"+b.process, b.relayOut)

	return b, nil
}

// Start watches the channel directory until ctx is done or Close is called.
func (b *ProfileBridge) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err = watcher.Add(b.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", b.dir, err)
	}
	b.watcher = watcher

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	b.wg.Add(1)
	go b.run(runCtx)

	return nil
}

// drainTimeout bounds how long Close waits for queued events to be written.
const drainTimeout = time.Second

// Close writes the events still queued for other processes, stops the
// watcher and detaches from the hub.
func (b *ProfileBridge) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := b.endpoint.Drain(ctx); err != nil {
		b.logger.Warn().Err(err).Str("func", "ProfileBridge.Close").Msg("outgoing events were not flushed")
	}

	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	b.endpoint.Close()

	if b.watcher != nil {
		return b.watcher.Close()
	}
	return nil
}

func (b *ProfileBridge) run(ctx context.Context) {
	defer b.wg.Done()

	pruneTicker := time.NewTicker(b.ttl)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				b.relayIn(event.Name)
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.logger.Warn().Err(err).Str("func", "ProfileBridge.run").Msg("fsnotify error")
		case <-pruneTicker.C:
			b.prune()
		}
	}
}

// relayOut writes an event published in this process for the others.
// The file is renamed into place so readers never see partial content.
func (b *ProfileBridge) relayOut(evt models.Event) {
	evt.Origin = b.process
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}

	name := fmt.Sprintf("%d-%s-%d", time.Now().UnixNano(), b.process, b.seq.Add(1))
	tmp := filepath.Join(b.dir, name+tmpFileExt)
	if err = os.WriteFile(tmp, data, 0o644); err != nil {
		b.logger.Warn().Err(err).Str("func", "ProfileBridge.relayOut").Msg("error writing event file")
		return
	}
	if err = os.Rename(tmp, filepath.Join(b.dir, name+eventFileExt)); err != nil {
		b.logger.Warn().Err(err).Str("func", "ProfileBridge.relayOut").Msg("error publishing event file")
		_ = os.Remove(tmp)
	}
}

// relayIn republishes an event file written by another process.
func (b *ProfileBridge) relayIn(path string) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, eventFileExt) || strings.Contains(name, "-"+b.process+"-") {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// already pruned
		return
	}

	var evt models.Event
	if err = json.Unmarshal(data, &evt); err != nil || !evt.Type.Valid() {
		b.logger.Warn().Str("func", "ProfileBridge.relayIn").Str("file", name).Msg("ignoring malformed event file")
		return
	}

	if err = b.endpoint.Publish(evt); err != nil {
		b.logger.Debug().Err(err).Str("func", "ProfileBridge.relayIn").Msg("event not relayed")
	}
}

func (b *ProfileBridge) prune() {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-b.ttl)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		_ = os.Remove(filepath.Join(b.dir, entry.Name()))
	}
}
