package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dgmtsproject/dgmts-sub001/internal/config"
	framecache "github.com/dgmtsproject/dgmts-sub001/pkg/adapters/cache/redis"
	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/source"
	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/source/postgres"
	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/source/sensorapi"
	exportstore "github.com/dgmtsproject/dgmts-sub001/pkg/adapters/storage/s3"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/services"
)

// buildFrameService wires sources, cache and export store from config.
// The returned cleanup releases any connections that were opened.
func buildFrameService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*services.FrameService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	router := source.NewRouter()

	if apiInstruments := cfg.InstrumentsBySource(config.SourceSensorAPI); len(apiInstruments) > 0 {
		paths := make(map[string]string, len(apiInstruments))
		for _, inst := range apiInstruments {
			paths[inst.ID] = inst.Path
		}
		client, err := sensorapi.NewClient(sensorapi.Config{
			BaseURL: cfg.SensorAPI.BaseURL,
			Token:   cfg.SensorAPI.Token,
			Timeout: cfg.SensorAPI.Timeout,
			Paths:   paths,
		}, logger.Named("sensorapi"))
		if err != nil {
			return nil, cleanup, err
		}
		for _, inst := range apiInstruments {
			if err := router.Register(inst.Info(), client); err != nil {
				return nil, cleanup, err
			}
		}
	}

	if dbInstruments := cfg.InstrumentsBySource(config.SourcePostgres); len(dbInstruments) > 0 {
		db, err := postgres.NewPostgresDB(postgres.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			DBName:   cfg.Postgres.DBName,
			SslMode:  cfg.Postgres.SslMode,
		})
		if err != nil {
			return nil, cleanup, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		tables := make(map[string]string, len(dbInstruments))
		for _, inst := range dbInstruments {
			tables[inst.ID] = inst.Table
		}
		src := postgres.NewSource(db, tables)
		for _, inst := range dbInstruments {
			if err := router.Register(inst.Info(), src); err != nil {
				return nil, cleanup, err
			}
		}
	}

	opts := []services.FrameServiceOption{
		services.WithCatalog(router),
		services.WithDefaultOptions(cfg.Sampler),
		services.WithConcurrencyLimit(cfg.FrameConcurrency),
		services.WithLogger(logger.Named("frames")),
	}

	if cfg.Cache.Enabled {
		client, err := framecache.NewRedisClient(ctx, framecache.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = client.Close() })
		opts = append(opts, services.WithCache(framecache.NewFrameCache(client, cfg.Cache.Prefix), cfg.Cache.TTL))
	}

	if cfg.S3.Enabled {
		store, err := exportstore.NewExportStore(exportstore.Config{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Secure:    cfg.S3.Secure,
		})
		if err != nil {
			return nil, cleanup, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, cleanup, fmt.Errorf("prepare export bucket: %w", err)
		}
		opts = append(opts, services.WithExportStore(store, cfg.S3.URLExpiry))
	}

	return services.NewFrameService(router, opts...), cleanup, nil
}
