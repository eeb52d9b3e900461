// Command loadtest нагружает CartService по gRPC: каждая итерация работает
// с отдельной сессией и проверяет итоги корзины и повторы по idempotency-key.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	foodtuckv1 "github.com/vladislavdragonenkov/foodtuck/proto/foodtuck/v1"
)

const (
	idempotencyHeader = "idempotency-key"
	sessionHeader     = "x-session-id"
	defaultProductID  = "food-margherita"
)

var errScenariosFailed = errors.New("load test finished with failed scenarios")

type loadMode string

const (
	modeAdd      loadMode = "add"
	modeAddGet   loadMode = "add-get"
	modeAddClear loadMode = "add-clear"
)

type config struct {
	addr        string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	connections int
	timeout     time.Duration
	mode        loadMode
	replayRate  int
	productID   string
	quantity    int
	sessionTag  string
	outputPath  string
}

func (c config) validate() error {
	if strings.TrimSpace(c.addr) == "" {
		return errors.New("addr is required")
	}
	if c.duration < 0 {
		return errors.New("duration must be >= 0")
	}
	if c.duration == 0 && c.total <= 0 {
		return errors.New("total must be > 0 when duration is not set")
	}
	if c.duration > 0 && c.totalSet && c.total <= 0 {
		return errors.New("total must be > 0 when explicitly set with duration")
	}
	if c.concurrency <= 0 {
		return errors.New("concurrency must be > 0")
	}
	if c.connections <= 0 {
		return errors.New("connections must be > 0")
	}
	if c.timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	if c.quantity <= 0 {
		return errors.New("quantity must be > 0")
	}
	if c.replayRate < 0 || c.replayRate > 100 {
		return errors.New("replay-rate must be between 0 and 100")
	}
	if strings.TrimSpace(c.productID) == "" {
		return errors.New("product is required")
	}
	if strings.TrimSpace(c.sessionTag) == "" {
		return errors.New("session-tag is required")
	}
	return nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeAdd:
		return modeAdd, nil
	case modeAddGet:
		return modeAddGet, nil
	case modeAddClear:
		return modeAddClear, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

// dialFunc открывает клиент CartService; io.Closer закрывает соединение.
type dialFunc func(addr string) (foodtuckv1.CartServiceClient, io.Closer, error)

func dialCartService(addr string) (foodtuckv1.CartServiceClient, io.Closer, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("create grpc client connection: %w", err)
	}
	return foodtuckv1.NewCartServiceClient(conn), conn, nil
}

func newRootCmd(dial dialFunc) *cobra.Command {
	var (
		cfg       config
		modeValue string
	)

	cmd := &cobra.Command{
		Use:           "loadtest",
		Short:         "Generate cart load against the foodtuck gRPC API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := parseMode(modeValue)
			if err != nil {
				return err
			}
			cfg.mode = mode
			cfg.totalSet = cmd.Flags().Changed("total")
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cfg, dial)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.addr, "addr", "localhost:50051", "gRPC target address")
	flags.IntVar(&cfg.total, "total", 400, "total scenarios in count mode; with --duration only an upper bound when set")
	flags.DurationVar(&cfg.duration, "duration", 0, "optional time-based run duration (e.g. 10m)")
	flags.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flags.IntVar(&cfg.connections, "connections", 20, "number of gRPC client connections")
	flags.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-RPC timeout")
	flags.StringVar(&modeValue, "mode", string(modeAdd), "load mode: add | add-get | add-clear")
	flags.IntVar(&cfg.replayRate, "replay-rate", 0, "percent of scenarios that resend AddProduct with the same idempotency key (0..100)")
	flags.StringVar(&cfg.productID, "product", defaultProductID, "catalog product id to add")
	flags.IntVar(&cfg.quantity, "quantity", 1, "quantity per AddProduct call")
	flags.StringVar(&cfg.sessionTag, "session-tag", "load", "session id prefix")
	flags.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")

	return cmd
}

func run(ctx context.Context, out io.Writer, cfg config, dial dialFunc) error {
	clients := make([]foodtuckv1.CartServiceClient, 0, cfg.connections)
	closers := make([]io.Closer, 0, cfg.connections)
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()
	for i := 0; i < cfg.connections; i++ {
		client, closer, err := dial(cfg.addr)
		if err != nil {
			return err
		}
		clients = append(clients, client)
		closers = append(closers, closer)
	}

	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var failures int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func(client foodtuckv1.CartServiceClient) {
			defer wg.Done()
			for id := range jobs {
				if err := runScenario(client, cfg, id, runID, col); err != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}(clients[workerID%len(clients)])
	}

	dispatchJobs(ctx, jobs, cfg)
	wg.Wait()

	result := col.buildReport(startedAt, time.Since(startedAt))
	if result.FailedScenarios == 0 && failures > 0 {
		result.FailedScenarios = failures
		result.ErrorRate = ratio(result.FailedScenarios, result.TotalScenarios)
	}

	printReport(out, result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if result.FailedScenarios > 0 {
		return errScenariosFailed
	}
	return nil
}

// dispatchJobs раздаёт номера сценариев до исчерпания total, истечения duration
// или отмены ctx.
func dispatchJobs(ctx context.Context, jobs chan<- int, cfg config) {
	defer close(jobs)

	var deadline <-chan time.Time
	if cfg.duration > 0 {
		timer := time.NewTimer(cfg.duration)
		defer timer.Stop()
		deadline = timer.C
	}

	for i := 0; ; i++ {
		if (cfg.duration <= 0 || cfg.totalSet) && i >= cfg.total {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case jobs <- i:
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(dialCartService).ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "loadtest: %v\n", err)
		stop()
		os.Exit(1)
	}
}
