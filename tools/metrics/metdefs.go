package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChMessageStored    = make(chan int, 100)
	ChMessageBroadcast = make(chan int, 100)
	ChRateLimited      = make(chan int, 50)
	ChActiveClients    = make(chan int, 20)
	ChTopDemandingIP   = make(chan map[string]int, 2)
)

// Defined application metrics to track
var (
	msgStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "castline",
		Subsystem: "chat",
		Name:      "castline_total_stored_messages",
		Help:      "The total number of chat messages appended to the history log",
	})

	msgBroadcasted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "castline",
		Subsystem: "chat",
		Name:      "castline_total_broadcasted_frames",
		Help:      "The total number of client*frame deliveries broadcasted",
	})

	msgRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "castline",
		Subsystem: "chat",
		Name:      "castline_total_rate_limited",
		Help:      "The total number of chat messages dropped by the rate limiter",
	})

	clientsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "castline",
		Subsystem: "session",
		Name:      "castline_clients_active",
		Help:      "The number of currently authenticated clients",
	})

	connsTopDemandingIP = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "castline",
		Subsystem: "websocket",
		Name:      "castline_top_demanding_ip",
		Help:      "The top demanding IP on number of connections",
	},
		[]string{
			"ip",
		})
)

func init() {
	recordAppMetrics()
}

func recordAppMetrics() {

	// Worker for tracking number of stored chat messages
	go func() {
		for range ChMessageStored {
			msgStored.Inc()
		}
	}()

	// Worker to track number of broadcasted frame deliveries
	go func() {
		for v := range ChMessageBroadcast {
			msgBroadcasted.Add(float64(v))
		}
	}()

	// Worker to track rate limiter denials
	go func() {
		for range ChRateLimited {
			msgRateLimited.Inc()
		}
	}()

	// Worker to track the active clients gauge
	go func() {
		for v := range ChActiveClients {
			clientsActive.Set(float64(v))
		}
	}()

	// Worker to track the most demanding IP address
	go func() {
		for tdip := range ChTopDemandingIP {
			for ip, v := range tdip {
				connsTopDemandingIP.WithLabelValues(ip).Set(float64(v))
				break
			}
		}
	}()
}
