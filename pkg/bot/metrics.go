package bot

import "github.com/prometheus/client_golang/prometheus"

var (
	commandsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kidoku_commands_total",
		Help: "Slash-command invocations received.",
	})
	actionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kidoku_actions_total",
		Help: "Button presses received, by action name.",
	}, []string{"action"})
	remindersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kidoku_reminders_sent_total",
		Help: "Private reminder notices delivered to unread users.",
	})
)

func init() {
	prometheus.MustRegister(commandsTotal)
	prometheus.MustRegister(actionsTotal)
	prometheus.MustRegister(remindersTotal)
}
