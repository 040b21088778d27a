package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/queue/rabbitmq"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume frame requests from RabbitMQ and warm the frame cache",
	RunE:  runWorker,
}

// warm 与 export 共用的区间参数
var (
	rangeInstrument string
	rangeFrom       string
	rangeTo         string
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Publish a frame request for the worker",
	Long: `Publishes a FrameRequested message so a running worker samples the
instrument's readings ahead of time.

Example:
  dgmts warm --instrument smg3 --from 2024-01-01T00:00:00Z --to 2024-01-02T00:00:00Z`,
	RunE: runWarm,
}

func init() {
	for _, c := range []*cobra.Command{warmCmd, exportCmd} {
		c.Flags().StringVar(&rangeInstrument, "instrument", "", "instrument id")
		c.Flags().StringVar(&rangeFrom, "from", "", "range start (ISO-8601)")
		c.Flags().StringVar(&rangeTo, "to", "", "range end (ISO-8601)")
		_ = c.MarkFlagRequired("instrument")
	}
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frames, cleanup, err := buildFrameService(ctx, cfg, logger)
	defer cleanup()
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer conn.Close()

	consumer, err := rabbitmq.NewFrameConsumer(conn, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey, cfg.RabbitMQ.Queue, frames, logger.Named("worker"))
	if err != nil {
		return fmt.Errorf("failed to init consumer: %w", err)
	}
	defer consumer.Close()

	logger.Info("frame worker started", zap.String("queue", cfg.RabbitMQ.Queue))
	return consumer.Start(ctx)
}

func runWarm(cmd *cobra.Command, args []string) error {
	from, to, err := parseRangeFlags()
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer conn.Close()

	pub, err := rabbitmq.NewFramePublisher(conn, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey)
	if err != nil {
		return fmt.Errorf("failed to init publisher: %w", err)
	}
	defer pub.Close()

	return pub.Publish(cmd.Context(), rabbitmq.FrameRequested{
		InstrumentID: rangeInstrument,
		From:         from,
		To:           to,
	})
}

func parseRangeFlags() (from, to time.Time, err error) {
	parse := func(name, v string) (time.Time, error) {
		if v == "" {
			return time.Time{}, nil
		}
		t, ok := domain.ParseInstant(v)
		if !ok {
			return time.Time{}, fmt.Errorf("--%s: unparseable time %q", name, v)
		}
		return t, nil
	}
	if from, err = parse("from", rangeFrom); err != nil {
		return
	}
	to, err = parse("to", rangeTo)
	return
}
