package payment

import (
	"fmt"

	"bacheliers/config"
)

func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Payment.Provider {
	case "stub", "":
		return &StubProvider{}, nil
	case "cinetpay":
		return NewCinetPayProvider(cfg.CinetPay.APIURL, cfg.CinetPay.APIKey, cfg.CinetPay.SiteID), nil
	case "midtrans":
		return NewMidtransProvider(cfg.Midtrans.ServerKey, cfg.Midtrans.Production), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.Payment.Provider)
	}
}
