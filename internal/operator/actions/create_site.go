package actions

import (
	"context"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/site"
)

type CreateSite struct {
	Create site.SiteCreate

	Site *site.Site
}

func (c *CreateSite) Name() string { return "CreateSite" }

func (c *CreateSite) Perform(ctx context.Context, store ledger.Store) error {
	created, err := ledger.CreateSite(ctx, store, &c.Create)
	if err != nil {
		return err
	}
	c.Site = created
	return nil
}
