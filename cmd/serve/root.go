package serve

import (
	"context"
	"errors"
	"fmt"
	cmdUtil "github.com/ValentinKolb/dKV-proxy/cmd/util"
	"github.com/ValentinKolb/dKV-proxy/lib/registry"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport/base"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("serve")

var (
	ServeCmd = &cobra.Command{
		Use:   "serve",
		Short: "Connect to all shards and serve the admin endpoint",
		Long: `Read the topology file, connect one client per shard and keep the connections open until the process is stopped.
The admin endpoint serves /metrics (Prometheus text format), /metrics/transport and /topology.
The configuration can be set via command line flags or environment variables. The format of the environment variables is DKV_PROXY_<flag> (e.g. DKV_PROXY_CONFIG=/etc/dkv/proxy.toml)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	key := "admin-endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:9091", cmdUtil.WrapString("The address on which the admin endpoint will listen"))

	key = "metrics-log-interval"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Interval in seconds in which transport metrics are logged at debug level (0 disables logging)"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return cmdUtil.InitLogging()
}

func run(_ *cobra.Command, _ []string) error {
	loader, err := cmdUtil.NewLoader()
	if err != nil {
		return err
	}

	r, err := loader.Get()
	if err != nil {
		return err
	}
	fmt.Println(r.String())
	Logger.Infof("registry ready, proxy port is %d", r.Port())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interval := viper.GetInt("metrics-log-interval"); interval > 0 {
		go base.LogMetrics(time.Duration(interval)*time.Second, ctx.Done())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		registry.WriteMetrics(w)
		metrics.WritePrometheus(w, true)
	})
	mux.HandleFunc("/metrics/transport", func(w http.ResponseWriter, _ *http.Request) {
		base.WriteMetrics(w)
	})
	mux.HandleFunc("/topology", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(r.String()))
	})

	srv := &http.Server{Addr: viper.GetString("admin-endpoint"), Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		Logger.Infof("admin endpoint listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		Logger.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
