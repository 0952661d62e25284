// Миграция легаси symbols_config.json ({"ETHUSDT": {"sl_percent": 0.5, ...}})
// в yaml-блок symbols: для configs/values_local.yaml. sl_percent задан в
// процентах, волатильность в конфиге — доля (0.5% -> 0.005).
package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

type symbolOut struct {
	Name       string  `yaml:"name"`
	TV         string  `yaml:"tv"`
	Volatility float64 `yaml:"volatility,omitempty"`
}

func migrate() (string, error) {
	viper.SetConfigName("symbols_config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		return "", errors.Wrap(err, "read symbols_config.json")
	}

	names := make([]string, 0)
	for name := range viper.AllSettings() {
		names = append(names, strings.ToUpper(name))
	}
	if len(names) == 0 {
		return "", errors.New("symbols_config.json has no symbols")
	}
	sort.Strings(names)

	out := make([]symbolOut, 0, len(names))
	for _, name := range names {
		slPercent := viper.GetFloat64(strings.ToLower(name) + ".sl_percent")
		out = append(out, symbolOut{
			Name:       name,
			TV:         "BINANCE:" + name,
			Volatility: slPercent / 100,
		})
	}

	bs, err := yaml.Marshal(map[string][]symbolOut{"symbols": out})
	if err != nil {
		return "", errors.Wrap(err, "marshal symbols yaml")
	}
	return string(bs), nil
}

func main() {
	block, err := migrate()
	if err != nil {
		panic(fmt.Errorf("migrate symbols: %w", err))
	}
	fmt.Print(block)
}
