package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"cityboard/src-server/metric"
	"cityboard/src-server/route"
	"cityboard/src-server/utils"
	"cityboard/src-server/warning"
	"cityboard/src-server/weather"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	as := utils.NewAppState()
	city := as.Config.GetCity()

	// weather snapshot: fetch once right away, then on the cron spec
	weatherService := weather.NewService(weather.Config{
		APIKey:    as.Config.GetWeatherApiKey(),
		City:      city.Name,
		Latitude:  city.Latitude,
		Longitude: city.Longitude,
	})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := weatherService.Refresh(ctx); err != nil {
			slog.Warn("initial weather refresh failed", "error", err)
		}
	}()

	cronRunner := cron.New()
	if err := weatherService.Schedule(cronRunner, city.WeatherRefresh); err != nil {
		slog.Error("can't schedule weather refresh", "error", err)
		os.Exit(1)
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	warningClient := warning.NewClient(city.RegionalKey)

	go metric.Init(as)

	// http server
	go func() {
		muxer := http.NewServeMux()
		muxer.Handle("GET /metrics", promhttp.Handler())
		route.Healthz(muxer)
		route.Categorys(muxer, as)
		route.Appointments(muxer, as)
		route.Calendar(muxer, as)
		route.Markers(muxer, as)
		route.Cards(muxer, as)
		route.Graphs(muxer, as)
		route.Import(muxer, as)
		route.Ical(muxer, as)
		route.Weather(muxer, weatherService)
		route.Warnings(muxer, warningClient)

		slog.Info("serving", "city", city.Name, "port", as.Config.GetPort())
		if err := http.ListenAndServe(":"+as.Config.GetPort(), route.Logging(muxer)); err != nil {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit")

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan
	as.GracefulShutdown()

	slog.Info("Gracefully shutting down...")
}
