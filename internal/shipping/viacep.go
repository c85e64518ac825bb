package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"modakarina-be/internal/logger"

	"go.uber.org/zap"
)

const viaCEPBaseURL = "https://viacep.com.br"

// Flat-rate table per state; destinations outside it pay the default.
var feeByUF = map[string]float64{
	"SP": 10.0, "RJ": 12.0, "MG": 15.0, "RS": 18.0,
	"PR": 16.0, "SC": 17.0, "GO": 20.0, "DF": 18.0,
	"BA": 22.0, "PE": 25.0, "CE": 28.0, "AM": 35.0,
}

const (
	defaultRegionFee = 20.0
	fallbackFee      = 15.0
	fallbackEtaDays  = 10
	freeShippingEta  = 5
)

type viaCEPEstimator struct {
	httpClient            *http.Client
	baseURL               string
	freeShippingThreshold float64
}

// NewViaCEPEstimator builds the production estimator backed by the
// ViaCEP postal-code service.
func NewViaCEPEstimator(freeShippingThreshold float64) Estimator {
	return &viaCEPEstimator{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL:               viaCEPBaseURL,
		freeShippingThreshold: freeShippingThreshold,
	}
}

func (e *viaCEPEstimator) Estimate(ctx context.Context, cep string, subtotal float64) (Quote, error) {
	if subtotal >= e.freeShippingThreshold {
		return Quote{Fee: 0, EtaDays: freeShippingEta}, nil
	}

	uf := e.lookupUF(ctx, cep)
	if uf == "" {
		return Quote{Fee: fallbackFee, EtaDays: fallbackEtaDays}, nil
	}

	fee, ok := feeByUF[uf]
	if !ok {
		fee = defaultRegionFee
	}

	eta := 10
	if uf == "SP" || uf == "RJ" || uf == "MG" {
		eta = 7
	}

	return Quote{Fee: fee, EtaDays: eta}, nil
}

// lookupUF resolves a CEP to its state code. Any failure (malformed
// CEP, network error, ViaCEP "erro" response) returns "".
func (e *viaCEPEstimator) lookupUF(ctx context.Context, cep string) string {
	log := logger.FromCtx(ctx).With(zap.String("cep", cep))

	normalized := strings.NewReplacer("-", "", ".", "").Replace(strings.TrimSpace(cep))
	if len(normalized) != 8 {
		log.Warn("malformed CEP, using fallback shipping")
		return ""
	}

	body, err := e.fetch(ctx, fmt.Sprintf("%s/ws/%s/json/", e.baseURL, normalized))
	if err != nil {
		log.Warn("CEP lookup failed, using fallback shipping", zap.Error(err))
		return ""
	}

	var res struct {
		UF   string `json:"uf"`
		Erro bool   `json:"erro"`
	}
	if err := json.Unmarshal(body, &res); err != nil || res.Erro {
		log.Warn("CEP not resolvable, using fallback shipping")
		return ""
	}

	return res.UF
}

// fetch performs the lookup with one retry on transport errors.
func (e *viaCEPEstimator) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(200 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := e.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("viacep status %d", resp.StatusCode)
		}

		return body, nil
	}

	return nil, lastErr
}
