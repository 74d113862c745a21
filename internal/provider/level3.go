package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/internal/observability"
	"github.com/jddeal/go-wxdata/level3"
	"github.com/jddeal/go-wxdata/nexrad"
)

// Level3 serves products from a NIDS/SITE/PRODUCT/ bucket layout.
type Level3 struct {
	Store   ObjectStore
	Metrics *observability.Metrics
	Log     logrus.Ext1FieldLogger
	Limit   int
}

// Sites lists the radars in the bucket.
func (p *Level3) Sites(ctx context.Context) ([]string, error) {
	_, sites, err := list(ctx, p.Store, p.Metrics, level3NIDS)
	return sites, err
}

// Products lists the product codes available for site, eg N0Q.
func (p *Level3) Products(ctx context.Context, site string) ([]string, error) {
	_, products, err := list(ctx, p.Store, p.Metrics, level3NIDS+site+"/")
	return products, err
}

// Files lists the most recent files of a product.
func (p *Level3) Files(ctx context.Context, site, product string) ([]string, error) {
	files, _, err := list(ctx, p.Store, p.Metrics, level3NIDS+site+"/"+product+"/")
	if err != nil {
		return nil, err
	}
	return lastN(files, p.Limit), nil
}

// Product fetches and decodes one product file.
func (p *Level3) Product(ctx context.Context, site, product, name string) (*level3.File, error) {
	data, err := fetch(ctx, p.Store, p.Metrics, Level3Key(site, product, name))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	f, err := nexrad.LoadData(data, p.Log.WithField("file", name))
	if err == nil && f.Level3 == nil {
		err = fmt.Errorf("provider: %s is a %s file", name, f.Format)
	}
	if err != nil {
		p.Metrics.ObserveDecode("level3", 0, 0, err)
		return nil, err
	}
	p.Metrics.ObserveDecode("level3", f.MessageCount(), time.Since(start).Seconds(), nil)
	return f.Level3, nil
}
