// Package metrics содержит счетчики Prometheus для операций жизненного
// цикла подписок. Метрики отдаются обработчиком promhttp на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlanPurchasesTotal — количество успешных покупок планов.
	PlanPurchasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plan_manager_plan_purchases_total",
		Help: "Total number of successful plan purchases.",
	})

	// PlanCancellationsTotal — количество успешных отмен подписок.
	PlanCancellationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plan_manager_plan_cancellations_total",
		Help: "Total number of successful plan cancellations.",
	})

	// ExpiryAlertsTotal — количество оповещений, созданных сканером.
	ExpiryAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plan_manager_expiry_alerts_total",
		Help: "Total number of expiry alerts created by the sweep.",
	})
)
