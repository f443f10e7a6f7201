package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/docload"
	"github.com/hupe1980/docload/codec"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Backends selectable with --backend.
const (
	backendMemory   = "memory"
	backendLocal    = "local"
	backendMinio    = "minio"
	backendS3       = "s3"
	backendDynamoDB = "dynamodb"
)

var errUsage = errors.New("usage: docload HOST PORT DIR REPEAT")

// config is the fully resolved command line.
type config struct {
	Host   string
	Port   int
	Dir    string
	Repeat int

	Mode         docload.Mode
	Backend      string
	Bucket       string
	Table        string
	Prefix       string
	AccessKey    string
	SecretKey    string
	Secure       bool
	Region       string
	PoolSize     int
	SplitSize    int
	Ceiling      int
	PollInterval time.Duration
	URIBase      string
	Codec        codec.Codec
	Exclude      []string
	MaxInFlight  int64
	WriteRate    float64
	HandleRate   float64
	ByteRate     int64
	Latency      time.Duration
	Strict       bool
	LogLevel     slog.Level
	LogFormat    string
	MetricsAddr  string
	Output       string
}

// Endpoint returns host:port.
func (c config) Endpoint() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// URL returns the endpoint as an http(s) URL.
func (c config) URL() string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	return scheme + "://" + c.Endpoint()
}

func addFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (YAML)")
	fs.String("mode", "batch", "write mode: batch or item")
	fs.String("backend", backendMemory, "document store: memory, local, minio, s3 or dynamodb")
	fs.String("bucket", "docload", "bucket name (minio, s3) or root directory (local)")
	fs.String("table", "docload", "table name (dynamodb)")
	fs.String("prefix", "", "key prefix prepended to every document name")
	fs.String("access-key", "", "access key for the backend")
	fs.String("secret-key", "", "secret key for the backend")
	fs.Bool("secure", false, "use TLS to reach the backend")
	fs.String("region", "us-east-1", "region (s3, dynamodb)")
	fs.Int("pool-size", 1, "number of independent client handles")
	fs.Int("split-size", 100, "documents per batch call")
	fs.Int("ceiling", 30, "incomplete rounds that hold back the next round (batch mode)")
	fs.Duration("poll-interval", 0, "completion polling period (default 200ms batch, 500ms item)")
	fs.String("uri-base", "", "document name prefix (default /performance/restbatch/ or /performance/restfast/)")
	fs.String("encoding", "none", "payload encoding applied at load: "+strings.Join(codec.Names(), ", "))
	fs.StringSlice("exclude", []string{"*.DS_Store"}, "file name patterns skipped when loading")
	fs.Int64("max-inflight", 0, "bound on concurrent writes per round in item mode (0 = unbounded)")
	fs.Float64("write-rate", 0, "documents per second across all rounds (0 = unlimited)")
	fs.Int64("byte-rate", 0, "payload bytes per second across all rounds (0 = unlimited)")
	fs.Float64("handle-rate", 0, "documents per second per client handle (0 = unlimited)")
	fs.Duration("latency", 0, "artificial delay added to every store call")
	fs.Bool("strict", false, "exit with status 2 when any write failed")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-format", "text", "log format: text or json")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	fs.String("output", "text", "report format: text or json")
}

// parseConfig validates the positional arguments and resolves every flag
// through v, so values may also come from a config file or DOCLOAD_* variables.
func parseConfig(v *viper.Viper, args []string) (config, error) {
	if len(args) != 4 {
		return config{}, errUsage
	}

	c := config{
		Host:         strings.TrimSpace(args[0]),
		Dir:          args[2],
		Backend:      strings.ToLower(v.GetString("backend")),
		Bucket:       v.GetString("bucket"),
		Table:        v.GetString("table"),
		Prefix:       v.GetString("prefix"),
		AccessKey:    v.GetString("access-key"),
		SecretKey:    v.GetString("secret-key"),
		Secure:       v.GetBool("secure"),
		Region:       v.GetString("region"),
		PoolSize:     v.GetInt("pool-size"),
		SplitSize:    v.GetInt("split-size"),
		Ceiling:      v.GetInt("ceiling"),
		PollInterval: v.GetDuration("poll-interval"),
		URIBase:      v.GetString("uri-base"),
		Exclude:      v.GetStringSlice("exclude"),
		MaxInFlight:  v.GetInt64("max-inflight"),
		WriteRate:    v.GetFloat64("write-rate"),
		HandleRate:   v.GetFloat64("handle-rate"),
		ByteRate:     v.GetInt64("byte-rate"),
		Latency:      v.GetDuration("latency"),
		Strict:       v.GetBool("strict"),
		LogFormat:    strings.ToLower(v.GetString("log-format")),
		MetricsAddr:  v.GetString("metrics-addr"),
		Output:       strings.ToLower(v.GetString("output")),
	}

	if c.Host == "" {
		return c, fmt.Errorf("%w: empty host", errUsage)
	}

	port, err := strconv.Atoi(args[1])
	if err != nil || port < 1 || port > 65535 {
		return c, fmt.Errorf("%w: invalid port %q", errUsage, args[1])
	}
	c.Port = port

	if c.Dir == "" {
		return c, fmt.Errorf("%w: empty directory", errUsage)
	}

	repeat, err := strconv.Atoi(args[3])
	if err != nil || repeat < 0 {
		return c, fmt.Errorf("%w: invalid repeat count %q", errUsage, args[3])
	}
	c.Repeat = repeat

	if c.Mode, err = docload.ParseMode(v.GetString("mode")); err != nil {
		return c, err
	}

	switch c.Backend {
	case backendMemory, backendLocal, backendMinio, backendS3, backendDynamoDB:
	default:
		return c, fmt.Errorf("unknown backend %q", c.Backend)
	}

	var ok bool
	if c.Codec, ok = codec.ByName(strings.ToLower(v.GetString("encoding"))); !ok {
		return c, fmt.Errorf("unknown encoding %q", v.GetString("encoding"))
	}

	if err := c.LogLevel.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return c, err
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return c, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.Output != "text" && c.Output != "json" {
		return c, fmt.Errorf("unknown output format %q", c.Output)
	}
	if c.PoolSize < 1 {
		return c, fmt.Errorf("pool size must be positive, got %d", c.PoolSize)
	}

	return c, nil
}

// jobOptions maps the configuration onto docload options.
func (c config) jobOptions() []docload.Option {
	opts := []docload.Option{
		docload.WithMode(c.Mode),
		docload.WithRounds(c.Repeat),
		docload.WithSplitSize(c.SplitSize),
		docload.WithCeiling(c.Ceiling),
		docload.WithPollInterval(c.PollInterval),
		docload.WithMaxInFlight(c.MaxInFlight),
		docload.WithWriteRate(c.WriteRate),
		docload.WithByteRate(c.ByteRate),
	}
	if c.URIBase != "" {
		opts = append(opts, docload.WithURIBase(c.URIBase))
	}
	return opts
}

// uriBase returns the effective document name prefix.
func (c config) uriBase() string {
	if c.URIBase != "" {
		return c.URIBase
	}
	return c.Mode.URIBase()
}
