//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/meetmail/internal/bootstrap"
	"github.com/yanqian/meetmail/internal/domain/export"
	"github.com/yanqian/meetmail/internal/domain/mailgen"
	"github.com/yanqian/meetmail/internal/infra/config"
	httpiface "github.com/yanqian/meetmail/internal/interface/http"
	"github.com/yanqian/meetmail/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideMailgenConfig,
		provideExtractor,
		provideDraftRepository,
		provideDraftStore,
		provideArchive,
		mailgen.NewService,
		export.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
