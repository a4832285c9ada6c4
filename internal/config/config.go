package config

import (
	"fmt"
	"net/url"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Default configuration values
const (
	DefaultServer            = "localhost:8080"
	DefaultName              = "Anonymous"
	DefaultSTUN              = "stun:stun.l.google.com:19302"
	DefaultListenAddr        = ":8080"
	DefaultReconnectAttempts = 10
)

// Config holds the meeting client configuration
type Config struct {
	// Server is the room server as given by the user (host[:port] or URL)
	Server string

	// WebSocketURL is constructed from Server
	WebSocketURL string

	// Name is the local display name
	Name string

	// ICE servers for WebRTC
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ForceRelay bool

	// Media files standing in for the camera, microphone and screen
	VideoFile  string
	AudioFile  string
	ScreenFile string

	// ReconnectAttempts bounds signaling reconnects; 0 retries forever, <0 never retries
	ReconnectAttempts int
}

// Options carries CLI flag overrides. Empty strings and nil pointers mean "not set".
type Options struct {
	Server            string
	Name              string
	STUNServer        string
	TURNServer        string
	TURNUser          string
	TURNPass          string
	ForceRelay        bool
	VideoFile         string
	AudioFile         string
	ScreenFile        string
	ReconnectAttempts *int
}

type environment struct {
	Server            string `env:"STUDYHUB_SERVER"`
	Name              string `env:"STUDYHUB_NAME"`
	STUNServer        string `env:"STUN_SERVER"`
	TURNServer        string `env:"TURN_SERVER"`
	TURNUser          string `env:"TURN_USERNAME"`
	TURNPass          string `env:"TURN_PASSWORD"`
	ForceRelay        bool   `env:"FORCE_RELAY"`
	VideoFile         string `env:"VIDEO_FILE"`
	AudioFile         string `env:"AUDIO_FILE"`
	ScreenFile        string `env:"SCREEN_FILE"`
	ReconnectAttempts *int   `env:"RECONNECT_ATTEMPTS"`
	ListenAddr        string `env:"LISTEN_ADDR"`
}

// readEnvironment loads an optional .env file and decodes the process environment.
func readEnvironment() (environment, error) {
	_ = godotenv.Load()

	var e environment
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return environment{}, fmt.Errorf("read environment: %w", err)
	}
	return e, nil
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables (and .env)
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	e, err := readEnvironment()
	if err != nil {
		return nil, err
	}

	server := first(opts.Server, e.Server, DefaultServer)
	wsURL, err := WebSocketURL(server)
	if err != nil {
		return nil, err
	}

	attempts := DefaultReconnectAttempts
	if e.ReconnectAttempts != nil {
		attempts = *e.ReconnectAttempts
	}
	if opts.ReconnectAttempts != nil {
		attempts = *opts.ReconnectAttempts
	}

	return &Config{
		Server:            server,
		WebSocketURL:      wsURL,
		Name:              first(strings.TrimSpace(opts.Name), strings.TrimSpace(e.Name), DefaultName),
		STUNServer:        first(opts.STUNServer, e.STUNServer, DefaultSTUN),
		TURNServer:        first(opts.TURNServer, e.TURNServer),
		TURNUser:          first(opts.TURNUser, e.TURNUser),
		TURNPass:          first(opts.TURNPass, e.TURNPass),
		ForceRelay:        opts.ForceRelay || e.ForceRelay,
		VideoFile:         first(opts.VideoFile, e.VideoFile),
		AudioFile:         first(opts.AudioFile, e.AudioFile),
		ScreenFile:        first(opts.ScreenFile, e.ScreenFile),
		ReconnectAttempts: attempts,
	}, nil
}

// ServerConfig holds the room server configuration
type ServerConfig struct {
	ListenAddr string
}

// LoadServer resolves the listen address: flag > env > default.
func LoadServer(listenAddr string) (*ServerConfig, error) {
	e, err := readEnvironment()
	if err != nil {
		return nil, err
	}
	return &ServerConfig{ListenAddr: first(listenAddr, e.ListenAddr, DefaultListenAddr)}, nil
}

// WebSocketURL turns a host[:port] or http(s)/ws(s) URL into the signaling endpoint.
// Bare hosts use wss unless they point at the local machine.
func WebSocketURL(server string) (string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", fmt.Errorf("server address cannot be empty")
	}

	if !strings.Contains(server, "://") {
		scheme := "wss"
		if isLocal(server) {
			scheme = "ws"
		}
		server = scheme + "://" + server
	}

	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server address %q: %w", server, err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// GetRoomLink returns the shareable URL for a room ID
func (c *Config) GetRoomLink(roomID string) string {
	u, err := url.Parse(c.WebSocketURL)
	if err != nil {
		return roomID
	}
	scheme := "https"
	if u.Scheme == "ws" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/meet/%s", scheme, u.Host, roomID)
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Config) GetSTUNServers() []string {
	if c.STUNServer == "" {
		return nil
	}
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	host := strings.TrimPrefix(c.TURNServer, "turn:")
	return []string{
		fmt.Sprintf("turn:%s:3478?transport=udp", host),
		fmt.Sprintf("turn:%s:3478?transport=tcp", host),
		fmt.Sprintf("turns:%s:5349?transport=tcp", host),
	}
}

// GetTURNCredentials returns TURN username and password
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}

func isLocal(hostport string) bool {
	host := hostport
	if i := strings.LastIndex(hostport, ":"); i >= 0 && !strings.HasSuffix(hostport, "]") {
		host = hostport[:i]
	}
	host = strings.Trim(host, "[]")
	return host == "localhost" || host == "127.0.0.1" || host == "::1" || host == ""
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
