package test

import (
	"math/rand/v2"
	"strings"

	"github.com/Zaqui712/B-FO/internal/domain/model"
)

const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomExternalKey returns a peer-style shipment key such as "SH-a8Fk2q".
func RandomExternalKey() string {
	var b strings.Builder
	b.WriteString("SH-")
	for n := 6 + rand.IntN(5); n > 0; n-- {
		b.WriteByte(keyAlphabet[rand.IntN(len(keyAlphabet))])
	}
	return b.String()
}

// RandomOrder builds a valid order for the given status with distinct item ids.
func RandomOrder(statusID int64, lines int) model.Order {
	order := model.Order{
		StatusID:   statusID,
		SupplierID: 1 + rand.Int64N(1000),
	}
	for i := range lines {
		order.Lines = append(order.Lines, model.OrderLine{ItemID: int64(i*100) + 1 + rand.Int64N(100)})
	}
	return order
}
