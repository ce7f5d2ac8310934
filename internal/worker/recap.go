// Package worker keeps shareable monthly recap files in sync with the
// ledger. It consumes change events from the message queue and rewrites
// the recap text for every month a change touches.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/amqp"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/export"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/ledger"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
)

// Consumer delivers ledger change events. Handler errors cause the
// message to be requeued, so handleEvent must only fail on retryable
// problems.
type Consumer interface {
	ConsumeLedgerEvents(ctx context.Context, handler func(*amqp.LedgerEventMessage) error) error
}

type RecapWorker struct {
	consumer  Consumer
	ledger    *ledger.Store
	outputDir string
	logger    *log.Logger
}

func NewRecapWorker(consumer Consumer, store *ledger.Store, outputDir string, logger *log.Logger) *RecapWorker {
	return &RecapWorker{
		consumer:  consumer,
		ledger:    store,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Run consumes events until the context is canceled.
func (w *RecapWorker) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating recap output dir: %w", err)
	}

	w.logger.InfoContext(ctx, "recap worker started",
		log.FieldQueue, "ledger events",
		"output_dir", w.outputDir)

	return w.consumer.ConsumeLedgerEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
		return w.handleEvent(ctx, msg)
	})
}

func (w *RecapWorker) handleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	month := core.MonthKey(msg.MonthKey)
	if !month.Valid() {
		// Malformed event; requeueing would loop forever.
		w.logger.Warn("skipping event with invalid month key",
			log.FieldEvent, msg.Event,
			log.FieldMonthKey, msg.MonthKey)
		return nil
	}

	if err := w.ledger.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing ledger: %w", err)
	}

	if err := w.WriteRecap(month); err != nil {
		return err
	}

	// A change in an earlier month shifts the opening balance of every
	// later month, so regenerate those too.
	report := w.ledger.Report()
	for _, ms := range report.Ascending {
		if ms.MonthKey <= month {
			continue
		}
		if err := w.WriteRecap(ms.MonthKey); err != nil {
			return err
		}
	}

	w.logger.Info("recaps regenerated",
		log.FieldEvent, msg.Event,
		log.FieldTransactionID, msg.TransactionID,
		log.FieldMonthKey, msg.MonthKey)

	return nil
}

// WriteRecap renders one month's recap to <outputDir>/<monthKey>.txt.
// The write goes through a temp file and rename so readers never see a
// half-written recap. A month that dropped its last transaction has its
// file removed instead.
func (w *RecapWorker) WriteRecap(month core.MonthKey) error {
	report := w.ledger.Report()
	target := filepath.Join(w.outputDir, string(month)+".txt")

	text, err := export.RecapText(report, month)
	if err != nil {
		if removeErr := os.Remove(target); removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("removing stale recap: %w", removeErr)
		}
		return nil
	}

	tmp, err := os.CreateTemp(w.outputDir, "recap-*.tmp")
	if err != nil {
		return fmt.Errorf("creating recap temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("writing recap: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing recap temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("publishing recap file: %w", err)
	}

	w.logger.Debug("recap written",
		log.FieldMonthKey, string(month),
		log.FieldFile, target)

	return nil
}

// WriteAll regenerates every month present in the ledger, used on
// startup to catch up after downtime.
func (w *RecapWorker) WriteAll(ctx context.Context) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating recap output dir: %w", err)
	}
	if err := w.ledger.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing ledger: %w", err)
	}

	report := w.ledger.Report()
	for _, ms := range report.Ascending {
		if err := w.WriteRecap(ms.MonthKey); err != nil {
			return err
		}
	}

	w.logger.InfoContext(ctx, "all recaps regenerated",
		log.FieldCount, len(report.Ascending))

	return nil
}
