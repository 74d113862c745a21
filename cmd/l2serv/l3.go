package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jddeal/go-wxdata/level3"
)

type level3Source interface {
	Sites(ctx context.Context) ([]string, error)
	Products(ctx context.Context, site string) ([]string, error)
	Files(ctx context.Context, site, product string) ([]string, error)
	Product(ctx context.Context, site, product, name string) (*level3.File, error)
}

type productMeta struct {
	Heading  string        `json:"heading"`
	AwipsID  string        `json:"awips_id"`
	Origin   string        `json:"origin,omitempty"`
	Messages []messageMeta `json:"messages"`
}

type messageMeta struct {
	Code        int16      `json:"code"`
	Time        time.Time  `json:"time"`
	Latitude    float64    `json:"latitude,omitempty"`
	Longitude   float64    `json:"longitude,omitempty"`
	VCP         uint16     `json:"vcp,omitempty"`
	VolumeStart *time.Time `json:"volume_start,omitempty"`
	Packets     []uint16   `json:"packets,omitempty"`
	Tabular     [][]string `json:"tabular,omitempty"`
}

func (s *server) level3Engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery())
	e.GET("/l3", s.l3ListSitesHandler)
	e.GET("/l3/:site", s.l3ListProductsHandler)
	e.GET("/l3/:site/:product", s.l3ListFilesHandler)
	e.GET("/l3/:site/:product/:fn", s.l3MetaHandler)
	return e
}

func (s *server) ginContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.timeout)
}

func (s *server) l3ListSitesHandler(c *gin.Context) {
	ctx, cancel := s.ginContext(c)
	defer cancel()

	sites, err := s.level3.Sites(ctx)
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, sites)
}

func (s *server) l3ListProductsHandler(c *gin.Context) {
	ctx, cancel := s.ginContext(c)
	defer cancel()

	products, err := s.level3.Products(ctx, c.Param("site"))
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *server) l3ListFilesHandler(c *gin.Context) {
	ctx, cancel := s.ginContext(c)
	defer cancel()

	files, err := s.level3.Files(ctx, c.Param("site"), c.Param("product"))
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (s *server) l3MetaHandler(c *gin.Context) {
	ctx, cancel := s.ginContext(c)
	defer cancel()

	f, err := s.level3.Product(ctx, c.Param("site"), c.Param("product"), c.Param("fn"))
	if errors.Is(err, level3.ErrNoMessages) {
		c.AbortWithError(http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, describeProduct(f))
}

func describeProduct(f *level3.File) productMeta {
	h := f.WmoHeader()
	meta := productMeta{Heading: h.String(), AwipsID: h.AwipsID(), Messages: []messageMeta{}}
	if ccb := f.CCBHeader(); ccb != nil {
		meta.Origin = ccb.Originator
	}

	for _, m := range f.Messages() {
		mh := m.MessageHeader()
		mm := messageMeta{Code: mh.Code, Time: mh.DateTime()}

		if p, ok := m.(level3.Product); ok {
			d := p.DescriptionBlock()
			start := d.VolumeScanStart()
			mm.Latitude, mm.Longitude = d.LatitudeDegrees(), d.LongitudeDegrees()
			mm.VCP = d.VolumeCoveragePattern
			mm.VolumeStart = &start
		}

		var sym *level3.SymbologyBlock
		var tab *level3.TabularBlock
		switch p := m.(type) {
		case *level3.GraphicProduct:
			sym, tab = p.Symbology, p.Tabular
		case *level3.StormTrackingInformation:
			sym, tab = p.Symbology, p.Tabular
		case *level3.TabularProduct:
			tab = p.Tabular
		}
		if sym != nil {
			for _, pkt := range sym.Packets() {
				mm.Packets = append(mm.Packets, pkt.PacketCode())
			}
		}
		if tab != nil {
			mm.Tabular = tab.Pages
		}
		meta.Messages = append(meta.Messages, mm)
	}
	return meta
}
