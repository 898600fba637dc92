// Package services – CommandService
//
// CommandService is the dispatcher between the transport and the command
// package. For every invocation it constructs a fresh Command bound to the
// shared Context, runs it synchronously, records the outcome in the execution
// log and returns the command's error unchanged. Translating that error into a
// response is left to the caller.
//
// Observability: public methods are OpenTelemetry-instrumented and every
// execution is counted and timed in Prometheus.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/novaordis/rest-playground/internal/command"
	"github.com/novaordis/rest-playground/internal/domain"
	"github.com/novaordis/rest-playground/internal/repo"
	"github.com/novaordis/rest-playground/internal/utils"
)

var (
	commandExecs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "command_executions_total",
			Help: "Total number of command executions by outcome.",
		},
		[]string{"command", "outcome"},
	)

	commandDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_execution_duration_seconds",
			Help:    "Wall time spent in Command.Execute.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)

func init() {
	prometheus.MustRegister(commandExecs, commandDur)
}

// CommandInfo describes one registered command.
type CommandInfo struct {
	Name  string `json:"name"  example:"describe-api"`
	Title string `json:"title" example:"Describe Api"`
}

// Outcome is what one dispatched invocation produced.
type Outcome struct {
	// Execution is the recorded log entry. Its ID is empty when no DB is
	// configured.
	Execution *domain.Execution
	// Result is the command's report on success. Replays carry the stored
	// JSON as json.RawMessage.
	Result any
	// Replayed is true when the result was served from an earlier execution
	// with the same idempotency key.
	Replayed bool
}

// CommandService dispatches commands and keeps the execution log.
type CommandService struct {
	// DB stores executions and idempotency records. Nil disables both.
	DB *gorm.DB
	// Registry resolves command names.
	Registry *command.Registry
	// Context is bound to every constructed command.
	Context *command.Context

	// Timeout bounds a single Execute call. Zero means no limit.
	Timeout time.Duration
	// IdempotencyTTL is how long a key replays its execution.
	IdempotencyTTL time.Duration
}

// NewCommandService wires a service from the shared command Context.
func NewCommandService(db *gorm.DB, reg *command.Registry, cctx *command.Context) *CommandService {
	s := &CommandService{
		DB:             db,
		Registry:       reg,
		Context:        cctx,
		IdempotencyTTL: 24 * time.Hour,
	}
	if cctx != nil {
		s.Timeout = cctx.Config.CommandTimeout
		if cctx.Config.IdempotencyTTL > 0 {
			s.IdempotencyTTL = cctx.Config.IdempotencyTTL
		}
	}
	return s
}

// List returns the registered commands in name order.
func (s *CommandService) List() []CommandInfo {
	names := s.Registry.Names()
	out := make([]CommandInfo, 0, len(names))
	caser := cases.Title(language.English)
	for _, n := range names {
		out = append(out, CommandInfo{
			Name:  n,
			Title: caser.String(strings.ReplaceAll(n, "-", " ")),
		})
	}
	return out
}

// Execute dispatches the command registered under name on behalf of clientID.
//
// The returned error is exactly what Command.Execute returned (or
// command.ErrUnknownCommand from the lookup). The Outcome is non-nil whenever
// the command ran, successful or not.
//
// With a non-empty idemKey a successful execution is bound to
// (clientID, name, key) and later calls with the same tuple replay it without
// running the command again. Failures are never bound.
func (s *CommandService) Execute(ctx context.Context, clientID, name, idemKey string) (*Outcome, error) {
	tr := otel.Tracer("services/CommandService")
	ctx, span := tr.Start(ctx, "Execute",
		trace.WithAttributes(
			attribute.String("command.name", name),
			attribute.String("client.id", clientID),
			attribute.Bool("idempotent", idemKey != ""),
		),
	)
	defer span.End()

	cmd, err := s.Registry.New(name, s.Context)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	name = cmd.Name()

	if out := s.replay(ctx, clientID, name, idemKey); out != nil {
		span.SetAttributes(attribute.Bool("replayed", true))
		return out, nil
	}

	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	execErr := cmd.Execute(runCtx)
	elapsed := time.Since(start)

	exec := &domain.Execution{
		Command:    name,
		ClientID:   clientID,
		Outcome:    domain.OutcomeSucceeded,
		Status:     StatusFor(execErr),
		DurationMS: elapsed.Milliseconds(),
	}
	out := &Outcome{Execution: exec}

	if execErr != nil {
		exec.Outcome = domain.OutcomeFailed
		exec.Error = execErr.Error()
		span.RecordError(execErr)
		span.SetStatus(codes.Error, execErr.Error())
	} else if r, ok := cmd.(command.Reporter); ok {
		out.Result = r.Report()
		if out.Result != nil {
			if b, merr := json.Marshal(out.Result); merr == nil {
				exec.Result = string(b)
			}
		}
	}

	commandExecs.WithLabelValues(name, exec.Outcome).Inc()
	commandDur.WithLabelValues(name).Observe(elapsed.Seconds())
	span.SetAttributes(attribute.Int("http.status_code", exec.Status))

	s.record(ctx, exec, clientID, idemKey)
	return out, execErr
}

// replay returns the stored outcome for an idempotency key, or nil.
func (s *CommandService) replay(ctx context.Context, clientID, name, idemKey string) *Outcome {
	if s.DB == nil || idemKey == "" {
		return nil
	}
	rec, err := repo.GetIdempotency(ctx, s.DB, clientID, name, idemKey, time.Now().UTC())
	if err != nil {
		return nil
	}
	exec, err := repo.GetExecution(ctx, s.DB, rec.ExecutionID)
	if err != nil {
		s.logger().Warn().Err(err).Str("execution_id", rec.ExecutionID).Msg("idempotent replay: execution missing")
		return nil
	}
	out := &Outcome{Execution: exec, Replayed: true}
	if exec.Result != "" {
		out.Result = json.RawMessage(exec.Result)
	}
	return out
}

// record persists exec and, for successful keyed calls, the idempotency
// binding. Persistence failures are logged and never replace the command's
// own result.
func (s *CommandService) record(ctx context.Context, exec *domain.Execution, clientID, idemKey string) {
	if s.DB == nil {
		return
	}
	// Detached from cancellation so a timed-out command is still logged.
	ctx = context.WithoutCancel(ctx)
	if err := repo.CreateExecution(ctx, s.DB, exec); err != nil {
		s.logger().Error().Err(err).Str("command", exec.Command).Msg("record execution")
		return
	}
	if idemKey == "" || !exec.Succeeded() {
		return
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, clientID, exec.Command, idemKey, exec.ID, exec.Status, s.IdempotencyTTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		s.logger().Warn().Err(err).Str("command", exec.Command).Msg("record idempotency key")
	}
}

// ListExecutions returns a page of the execution log, newest first, and the
// total count. An empty command lists every command.
func (s *CommandService) ListExecutions(ctx context.Context, cmdName string, page, pageSize int) ([]domain.Execution, int64, error) {
	tr := otel.Tracer("services/CommandService")
	ctx, span := tr.Start(ctx, "ListExecutions",
		trace.WithAttributes(
			attribute.String("command.name", cmdName),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if s.DB == nil {
		return []domain.Execution{}, 0, nil
	}
	p := utils.NewPage(page, pageSize, 20, 0)
	cmdName = strings.ToLower(strings.TrimSpace(cmdName))

	total, err := repo.CountExecutions(ctx, s.DB, cmdName)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Execution{}, 0, nil
	}
	items, err := repo.ListExecutionsPage(ctx, s.DB, cmdName, p.Offset(), p.Size)
	return items, total, err
}

// GetExecution returns one execution, or ErrExecutionNotFound.
func (s *CommandService) GetExecution(ctx context.Context, id string) (*domain.Execution, error) {
	tr := otel.Tracer("services/CommandService")
	ctx, span := tr.Start(ctx, "GetExecution", trace.WithAttributes(attribute.String("execution.id", id)))
	defer span.End()

	if s.DB == nil {
		return nil, ErrExecutionNotFound
	}
	e, err := repo.GetExecution(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrExecutionNotFound
	}
	return e, err
}

// ExecutionsStats reports the row count and newest timestamp of the log, for
// conditional GETs.
func (s *CommandService) ExecutionsStats(ctx context.Context, cmdName string) (int64, *time.Time, error) {
	if s.DB == nil {
		return 0, nil, nil
	}
	return repo.ExecutionsStats(ctx, s.DB, strings.ToLower(strings.TrimSpace(cmdName)))
}

func (s *CommandService) logger() *zerolog.Logger {
	if s.Context == nil {
		l := zerolog.Nop()
		return &l
	}
	return &s.Context.Logger
}
