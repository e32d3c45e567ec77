package utils

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"cityboard/src-server/model"
	"cityboard/src-server/store"
)

type AppState struct {
	Config *Config
	RawDB  *sql.DB
	BunDB  *bun.DB
	When   *when.Parser

	Categories *store.CategoryStore
	Events     *store.EventStore

	MetricChans MetricChans

	AppCloseSignalChan chan os.Signal

	appCloseSignalChansMutex sync.Mutex
	appCloseSignalChans      []*chan struct{}
}

func NewAppState() *AppState {
	as := &AppState{}
	as.AppCloseSignalChan = make(chan os.Signal, 1)

	// date parser for loose start/end inputs
	as.When = when.New(nil)
	as.When.Add(en.All...)
	as.When.Add(common.All...)

	// env
	as.Config = NewConfig()

	as.MetricChans = MetricChans{
		DatabaseRead:  make(chan float64, 8),
		DatabaseWrite: make(chan float64, 8),
	}

	// database
	var err error
	as.RawDB, err = sql.Open(sqliteshim.ShimName, as.Config.GetDBPath()+"?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	as.RawDB.SetMaxIdleConns(8)

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	ctx := context.Background()
	if err := model.CreateSchema(as.BunDB); err != nil {
		slog.Error("cannot create schema", "error", err)
		os.Exit(1)
	}

	as.Categories = store.NewCategoryStore(as.BunDB)
	if _, err := as.Categories.EnsureFallback(ctx); err != nil {
		slog.Error("cannot ensure fallback category", "error", err)
		os.Exit(1)
	}
	if err := as.Categories.Load(ctx); err != nil {
		slog.Error("cannot load categories", "error", err)
		os.Exit(1)
	}

	as.Events = store.NewEventStore(as.BunDB, as.Categories)
	if err := as.Events.Load(ctx); err != nil {
		slog.Error("cannot load appointments", "error", err)
		os.Exit(1)
	}

	return as
}

// CreateGracefulShutdownChan hands out a channel that gets closed when
// GracefulShutdown runs; background goroutines select on it to stop.
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	ch := make(chan struct{})
	as.appCloseSignalChansMutex.Lock()
	defer as.appCloseSignalChansMutex.Unlock()
	as.appCloseSignalChans = append(as.appCloseSignalChans, &ch)
	return &ch
}

func (as *AppState) GracefulShutdown() {
	as.appCloseSignalChansMutex.Lock()
	defer as.appCloseSignalChansMutex.Unlock()
	for _, ch := range as.appCloseSignalChans {
		close(*ch)
	}
	as.appCloseSignalChans = nil

	if err := as.BunDB.Close(); err != nil {
		slog.Warn("cannot close database", "error", err)
	}
}
