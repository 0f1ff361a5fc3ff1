package services

import (
	"context"
	"fmt"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/email"
	"github.com/gitshopapp/merchconfig/internal/models"
)

// OrderNotifier tells the shop manager about a newly submitted order.
type OrderNotifier interface {
	NotifyNewOrder(ctx context.Context, snapshot *catalog.Snapshot, order *models.Order) error
}

// EmailOrderNotifier emails new orders to a fixed manager address.
type EmailOrderNotifier struct {
	provider       email.Provider
	renderer       *email.Renderer
	to             string
	currencySymbol string
}

func NewEmailOrderNotifier(provider email.Provider, to, currencySymbol string) (*EmailOrderNotifier, error) {
	if provider == nil {
		return nil, fmt.Errorf("email provider is required")
	}
	if to == "" {
		return nil, fmt.Errorf("notification address is required")
	}
	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return &EmailOrderNotifier{
		provider:       provider,
		renderer:       renderer,
		to:             to,
		currencySymbol: currencySymbol,
	}, nil
}

func (n *EmailOrderNotifier) NotifyNewOrder(ctx context.Context, snapshot *catalog.Snapshot, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	data := email.NewOrderNotification(snapshot, order, n.currencySymbol)
	if err := email.SendNewOrder(ctx, n.provider, n.renderer, n.to, data); err != nil {
		return fmt.Errorf("failed to notify about order %s: %w", order.ID, err)
	}
	return nil
}

type noopOrderNotifier struct{}

func (noopOrderNotifier) NotifyNewOrder(context.Context, *catalog.Snapshot, *models.Order) error {
	return nil
}
