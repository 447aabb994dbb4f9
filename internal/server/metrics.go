package server

import "github.com/prometheus/client_golang/prometheus"

var (
	connectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_clients",
		Help: "Number of currently registered connections",
	})

	registrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_registrations_total",
		Help: "Registration attempts by outcome",
	}, []string{"outcome"})

	relayedFramesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_relayed_frames_total",
		Help: "Chat frames relayed to other participants",
	})

	moderationCommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_moderation_commands_total",
		Help: "Moderation commands by action and outcome",
	}, []string{"action", "outcome"})
)

func init() {
	prometheus.MustRegister(connectedClients)
	prometheus.MustRegister(registrationsTotal)
	prometheus.MustRegister(relayedFramesTotal)
	prometheus.MustRegister(moderationCommandsTotal)
}
