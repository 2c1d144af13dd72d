package loadgen

import (
	"crypto/rand"
	"math/big"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/agrocast/internal/domain/crop"
)

const randomFloatDivisor = 1000000

// cropMix is every supported crop plus a mixed-case spelling, no crop and an
// unsupported one, so both error conventions get exercised.
var cropMix = func() []string {
	out := make([]string, 0, len(crop.All)+3)
	for _, c := range crop.All {
		out = append(out, c.String())
	}
	return append(out, "Rice", "", "banana")
}()

// Value ranges of generated inputs.
const (
	soilMoistureMax = 100.0
	rainfallMin     = 50.0
	rainfallRange   = 250.0
	fertilizerMax   = 120.0
)

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func pick[T any](xs []T) T {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(xs))))
	return xs[n.Int64()]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Generate creates n requests spread over both endpoints.
func Generate(n int, cities []string) []Request {
	out := make([]Request, n)
	for i := range out {
		out[i] = generateSingle(cities)
	}
	return out
}

func generateSingle(cities []string) Request {
	p := url.Values{}
	p.Set("city", pick(cities))
	if c := pick(cropMix); c != "" {
		p.Set("crop", c)
	}

	req := Request{ID: uuid.NewString(), Params: p}
	if getRandomFloat() < 0.5 {
		req.Endpoint = EndpointIrrigation
		p.Set("soil_moisture", formatFloat(getRandomFloat()*soilMoistureMax))
		return req
	}
	req.Endpoint = EndpointYield
	p.Set("rainfall", formatFloat(rainfallMin+getRandomFloat()*rainfallRange))
	p.Set("fertilizer", formatFloat(getRandomFloat()*fertilizerMax))
	return req
}
