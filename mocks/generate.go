package mocks

//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/argo-replay/internal/strategy Strategy
//go:generate mockgen -destination=./mock_order_sender.go -package=mocks github.com/rxtech-lab/argo-replay/internal/strategy OrderSender
//go:generate mockgen -destination=./mock_feed.go -package=mocks github.com/rxtech-lab/argo-replay/internal/feed Feed
