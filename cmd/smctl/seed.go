package main

import (
	"context"
	"fmt"

	"github.com/rookgm/streetmart/internal/app"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/service"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type seedItem struct {
	Name              string `yaml:"name"`
	Category          string `yaml:"category"`
	Unit              string `yaml:"unit"`
	Price             string `yaml:"price"`
	Stock             int    `yaml:"stock"`
	MinOrderQuantity  int    `yaml:"min_order_quantity"`
	LowStockThreshold int    `yaml:"low_stock_threshold"`
}

type seedActor struct {
	Login        string     `yaml:"login"`
	Password     string     `yaml:"password"`
	Role         string     `yaml:"role"`
	DisplayName  string     `yaml:"display_name"`
	BusinessName string     `yaml:"business_name"`
	Phone        string     `yaml:"phone"`
	Address      string     `yaml:"address"`
	City         string     `yaml:"city"`
	Items        []seedItem `yaml:"items"`
}

type seedFile struct {
	Actors []seedActor `yaml:"actors"`
}

type seedResult struct {
	Actors int `json:"actors"`
	Items  int `json:"items"`
}

// seed registers actors of YAML document and creates their items
func seed(ctx context.Context, svc *app.Services, data []byte) (seedResult, error) {
	var res seedResult

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return res, fmt.Errorf("parse seed file: %w", err)
	}

	for _, a := range file.Actors {
		actor, _, err := svc.Actors.Register(ctx, service.RegisterRequest{
			Login:        a.Login,
			Password:     a.Password,
			Role:         models.Role(a.Role),
			DisplayName:  a.DisplayName,
			BusinessName: a.BusinessName,
			Phone:        a.Phone,
			Address:      a.Address,
			City:         a.City,
		})
		if err != nil {
			return res, fmt.Errorf("register %q: %w", a.Login, err)
		}
		res.Actors++

		for _, it := range a.Items {
			price, err := decimal.NewFromString(it.Price)
			if err != nil {
				return res, fmt.Errorf("item %q of %q: price: %w", it.Name, a.Login, err)
			}

			_, err = svc.Catalog.CreateItem(ctx, actor.Principal(), service.CatalogItemInput{
				Name:              it.Name,
				Category:          it.Category,
				Unit:              it.Unit,
				Price:             price,
				Stock:             it.Stock,
				MinOrderQuantity:  it.MinOrderQuantity,
				LowStockThreshold: it.LowStockThreshold,
			})
			if err != nil {
				return res, fmt.Errorf("item %q of %q: %w", it.Name, a.Login, err)
			}
			res.Items++
		}
	}

	return res, nil
}
