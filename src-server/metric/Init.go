package metric

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cityboard/src-server/utils"
)

func register(gauge prometheus.Gauge, name string) {
	if err := prometheus.Register(gauge); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register metric", "name", name, "error", err)
			return
		}
	}
	slog.Debug("metric registered", "name", name)
	gauge.Set(0)
}

func unregister(gauge prometheus.Gauge, name string) {
	switch prometheus.Unregister(gauge) {
	case true:
		slog.Debug("metric unregistered", "name", name)
	case false:
		slog.Warn("metric not registered", "name", name)
	}
}

// polledGauge samples a value on every tick until shutdown. A failing
// sample logs and keeps the previous value.
func polledGauge(as *utils.AppState, name, help string, tickerInterval *time.Duration, sample func(*utils.AppState) (float64, error)) {
	gauge := promauto.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	register(gauge, name)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(*tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(gauge, name)
				return
			case <-ticker.C:
				value, err := sample(as)
				if err != nil {
					slog.Error("can't sample metric", "name", name, "error", err)
					continue
				}
				gauge.Set(value)
			}
		}
	}()
}

// channelGauge shows the most recent value sent on ch and decays back
// to zero when nothing arrives within the clear interval.
func channelGauge(as *utils.AppState, name, help string, ch <-chan float64, clearTickerInterval *time.Duration) {
	gauge := promauto.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	register(gauge, name)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(*clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(gauge, name)
				return
			case value := <-ch:
				gauge.Set(value)
				clearTicker.Reset(*clearTickerInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	polledGauge(as,
		"cityboard_database_empty_read_microsec",
		"The latency of an empty database read in microseconds",
		&tickerInterval,
		func(as *utils.AppState) (float64, error) {
			latency, err := database(as)
			if err != nil {
				return 0, err
			}
			return float64(latency.Microseconds()), nil
		})
	polledGauge(as,
		"cityboard_appointments_total",
		"The number of appointments in the database",
		&tickerInterval,
		func(as *utils.AppState) (float64, error) {
			count, err := appointmentCount(as)
			if err != nil {
				return 0, err
			}
			return float64(count), nil
		})
	channelGauge(as,
		"cityboard_database_read_microsec",
		"The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead,
		&clearTickerInterval)
	channelGauge(as,
		"cityboard_database_write_microsec",
		"The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite,
		&clearTickerInterval)
}
