package metrics

import (
	"sahaya_api/internal/common"

	"github.com/prometheus/client_golang/prometheus"
)

// Auth counts account lifecycle outcomes.
type Auth struct {
	SignUps        *prometheus.CounterVec
	SignIns        *prometheus.CounterVec
	PasswordResets *prometheus.CounterVec
	RoleChanges    prometheus.Counter
}

// NewAuth registers the counters with reg. Outcome labels are "success" or an
// error kind.
func NewAuth(reg prometheus.Registerer) *Auth {
	m := &Auth{
		SignUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahaya",
			Name:      "signups_total",
			Help:      "Sign-up attempts by outcome.",
		}, []string{"outcome"}),
		SignIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahaya",
			Name:      "signins_total",
			Help:      "Sign-in attempts by outcome.",
		}, []string{"outcome"}),
		PasswordResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahaya",
			Name:      "password_reset_events_total",
			Help:      "Password reset requests and completions by stage and outcome.",
		}, []string{"stage", "outcome"}),
		RoleChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sahaya",
			Name:      "role_changes_total",
			Help:      "Successful user role changes.",
		}),
	}
	reg.MustRegister(m.SignUps, m.SignIns, m.PasswordResets, m.RoleChanges)
	return m
}

// ObserveSignUp records the outcome of a sign-up. Safe on a nil receiver.
func (m *Auth) ObserveSignUp(err error) {
	if m == nil {
		return
	}
	m.SignUps.WithLabelValues(common.Kind(err)).Inc()
}

func (m *Auth) ObserveSignIn(err error) {
	if m == nil {
		return
	}
	m.SignIns.WithLabelValues(common.Kind(err)).Inc()
}

// ObservePasswordReset records a reset stage: "request" or "complete".
func (m *Auth) ObservePasswordReset(stage string, err error) {
	if m == nil {
		return
	}
	m.PasswordResets.WithLabelValues(stage, common.Kind(err)).Inc()
}

func (m *Auth) ObserveRoleChange() {
	if m == nil {
		return
	}
	m.RoleChanges.Inc()
}
