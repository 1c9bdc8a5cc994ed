package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del saga de settings. Viven en un paquete propio para evitar
// ciclos de import entre el orquestador y las capas HTTP.

var (
	MutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settings_mutations_total",
		Help: "Mutaciones de configuración por operación y resultado",
	}, []string{"op", "result"}) // result: ok|rejected|failed

	RollbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settings_rollbacks_total",
		Help: "Intentos de rollback por resultado",
	}, []string{"result"}) // result: restored|invalid

	SweptTokensTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settings_swept_tokens_total",
		Help: "Tokens de rollback vencidos que barrió el sweep",
	})

	CooldownRejectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settings_cooldown_rejects_total",
		Help: "Acciones rechazadas por ventana de cooldown activa",
	}, []string{"action"})
)

// RegisterSettings registra las métricas del dominio en el registry dado
// (o en el default si es nil).
func RegisterSettings(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		MutationsTotal,
		RollbacksTotal,
		SweptTokensTotal,
		CooldownRejectsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// RecordMutation registra el resultado de una mutación.
func RecordMutation(op, result string) {
	MutationsTotal.WithLabelValues(op, result).Inc()
}

// RecordRollback registra el resultado de un intento de rollback.
func RecordRollback(result string) {
	RollbacksTotal.WithLabelValues(result).Inc()
}

// RecordCooldownReject registra un rechazo por cooldown.
func RecordCooldownReject(action string) {
	CooldownRejectsTotal.WithLabelValues(action).Inc()
}
