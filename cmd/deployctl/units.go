package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ferreirogomes/nftmarket/models"
)

func units(cfg *unitsConfig, w io.Writer) error {
	if cfg.Reverse {
		amount, err := strconv.ParseUint(cfg.Args.Value, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "Error parsing base units %q", cfg.Args.Value)
		}
		_, err = fmt.Fprintln(w, models.FormatUnits(amount, cfg.Decimals))
		return err
	}
	amount, err := models.ParseUnits(cfg.Args.Value, cfg.Decimals)
	if err != nil {
		return errors.Wrap(err, "Error converting amount")
	}
	_, err = fmt.Fprintln(w, amount)
	return err
}
