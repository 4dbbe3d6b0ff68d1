package mocks

//go:generate mockgen -destination=./mock_marketdata.go -package=mocks sessionTrader/internal/ports BarProvider
//go:generate mockgen -destination=./mock_repository.go -package=mocks sessionTrader/internal/ports RunRepository
//go:generate mockgen -destination=./mock_strategy.go -package=mocks sessionTrader/internal/ports DecisionEngine
