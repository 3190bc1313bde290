package util

import (
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/lib/registry"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
	"github.com/ValentinKolb/dKV-proxy/rpc/serializer"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport/grpc"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport/http"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport/tcp"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and binds DKV_PROXY_* environment variables
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("dkv_proxy")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// InitLogging applies the configured log level to all proxy loggers
func InitLogging() error {
	return common.InitLoggers(viper.GetString("log-level"))
}

// GetConfigPath returns the topology file to read
func GetConfigPath() string {
	return viper.GetString("config")
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	name := viper.GetString("serializer")
	s, ok := serializer.New(name)
	if !ok {
		return nil, fmt.Errorf("invalid serializer %s", name)
	}
	return s, nil
}

// GetTransportFactory returns the transport factory based on configuration
func GetTransportFactory() (transport.Factory, error) {
	switch name := viper.GetString("transport"); name {
	case "tcp":
		return tcp.Factory, nil
	case "unix":
		return unix.Factory, nil
	case "http":
		return http.Factory, nil
	case "grpc":
		return grpc.Factory, nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}

// NewLoader creates a registry loader for the configured topology file,
// transport and serializer
func NewLoader() (*registry.Loader, error) {
	s, err := GetSerializer()
	if err != nil {
		return nil, err
	}
	f, err := GetTransportFactory()
	if err != nil {
		return nil, err
	}
	return registry.NewLoader(GetConfigPath(),
		registry.WithTransportFactory(f),
		registry.WithSerializer(s),
	), nil
}
