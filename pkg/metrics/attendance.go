package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AttendanceMetrics 考勤相关指标集合
type AttendanceMetrics struct {
	ActionsTotal     metric.Int64Counter
	ActionDuration   metric.Float64Histogram
	SheetRowsFetched metric.Int64Histogram
	SheetErrorsTotal metric.Int64Counter
	LockContentions  metric.Int64Counter
}

var (
	metrics *AttendanceMetrics
	meter   = otel.Meter("punchpass")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &AttendanceMetrics{}

	metrics.ActionsTotal, err = meter.Int64Counter(
		"attendance_actions_total",
		metric.WithDescription("Total number of attendance actions processed"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return err
	}

	metrics.ActionDuration, err = meter.Float64Histogram(
		"attendance_action_duration_seconds",
		metric.WithDescription("Time spent processing an attendance action"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.SheetRowsFetched, err = meter.Int64Histogram(
		"attendance_sheet_rows_fetched",
		metric.WithDescription("Rows returned by a full ledger fetch"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return err
	}

	metrics.SheetErrorsTotal, err = meter.Int64Counter(
		"attendance_sheet_errors_total",
		metric.WithDescription("Total number of ledger I/O failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	metrics.LockContentions, err = meter.Int64Counter(
		"attendance_lock_contentions_total",
		metric.WithDescription("Mutating actions rejected by the single-flight guard"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例，未初始化时返回 nil，调用方需判空
func GetMetrics() *AttendanceMetrics {
	return metrics
}

// RecordAction 记录一次考勤动作及其结果
func (m *AttendanceMetrics) RecordAction(ctx context.Context, action, outcome string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	}

	m.ActionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ActionDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("action", action),
	))
}

// RecordFetch 记录一次全表读取的行数
func (m *AttendanceMetrics) RecordFetch(ctx context.Context, rows int64) {
	m.SheetRowsFetched.Record(ctx, rows)
}

// RecordSheetError 记录一次台账 I/O 失败
func (m *AttendanceMetrics) RecordSheetError(ctx context.Context, op string) {
	m.SheetErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
	))
}

// RecordLockContention 记录一次互斥锁竞争
func (m *AttendanceMetrics) RecordLockContention(ctx context.Context, action string) {
	m.LockContentions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
	))
}
