package swarm

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/anacrolix/torrent"
	"github.com/sirupsen/logrus"

	"tunestream/internal/magnet"
)

// EngineConfig configures the anacrolix-backed swarm engine.
type EngineConfig struct {
	DataDir     string
	TrackerList []string
	Logger      *logrus.Logger
}

type anacrolixEngine struct {
	cfg    EngineConfig
	client *torrent.Client
}

// NewEngine starts an anacrolix torrent client rooted at cfg.DataDir.
func NewEngine(cfg EngineConfig) (Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if len(cfg.TrackerList) == 0 {
		cfg.TrackerList = defaultTrackers()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	clientConfig := torrent.NewDefaultClientConfig()
	clientConfig.DataDir = cfg.DataDir
	clientConfig.NoUpload = false
	clientConfig.Seed = false

	client, err := torrent.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create torrent client: %w", err)
	}

	cfg.Logger.Infof("swarm engine started, data dir: %s", cfg.DataDir)
	return &anacrolixEngine{cfg: cfg, client: client}, nil
}

func (e *anacrolixEngine) Add(ctx context.Context, magnetURI string) (Handle, error) {
	t, err := e.client.AddMagnet(magnetURI)
	if err != nil {
		return nil, fmt.Errorf("add magnet: %w", err)
	}

	for _, tracker := range e.cfg.TrackerList {
		t.AddTrackers([][]string{{tracker}})
	}

	select {
	case <-ctx.Done():
		t.Drop()
		return nil, ctx.Err()
	case <-t.GotInfo():
	}

	if t.Info() == nil {
		t.Drop()
		return nil, fmt.Errorf("missing torrent info for %s", magnetURI)
	}

	// Report a canonical magnet, stripped of whatever dn/tr params the
	// resolver happened to hand us.
	canonical := magnet.Build(t.InfoHash().HexString(), t.Info().BestName(), nil)
	if canonical == "" {
		canonical = magnetURI
	}
	return &anacrolixHandle{magnet: canonical, torrent: t}, nil
}

func (e *anacrolixEngine) Close() {
	e.client.Close()
	e.cfg.Logger.Info("swarm engine stopped")
}

type anacrolixHandle struct {
	magnet  string
	torrent *torrent.Torrent
}

func (h *anacrolixHandle) Magnet() string { return h.magnet }

func (h *anacrolixHandle) Name() string { return h.torrent.Info().BestName() }

func (h *anacrolixHandle) Ready() bool { return h.torrent.Info() != nil }

func (h *anacrolixHandle) Files() []File {
	torrentFiles := h.torrent.Files()
	files := make([]File, len(torrentFiles))
	for i, f := range torrentFiles {
		files[i] = File{Name: f.DisplayPath(), Size: f.Length()}
	}
	return files
}

func (h *anacrolixHandle) Stats() Stats {
	stats := h.torrent.Stats()
	return Stats{
		TotalPeers:       stats.TotalPeers,
		ActivePeers:      stats.ActivePeers,
		ConnectedSeeders: stats.ConnectedSeeders,
		BytesCompleted:   h.torrent.BytesCompleted(),
		BytesMissing:     h.torrent.BytesMissing(),
	}
}

func (h *anacrolixHandle) Open(name string) (io.ReadSeekCloser, error) {
	for _, f := range h.torrent.Files() {
		if f.DisplayPath() == name {
			return f.NewReader(), nil
		}
	}
	return nil, fmt.Errorf("file %q not in torrent %s", name, h.Name())
}

func (h *anacrolixHandle) Drop() { h.torrent.Drop() }

func defaultTrackers() []string {
	return []string{
		"udp://tracker.opentrackr.org:1337/announce",
		"udp://tracker.openbittorrent.com:6969/announce",
		"udp://open.stealth.si:80/announce",
		"udp://exodus.desync.com:6969/announce",
		"http://tracker.opentrackr.org:1337/announce",
		"udp://tracker.torrent.eu.org:451/announce",
	}
}

var _ Engine = (*anacrolixEngine)(nil)
var _ Handle = (*anacrolixHandle)(nil)
