// Package snapshot provides the catalog SnapshotStore backends. The file,
// bolt and redis stores share one encoding: a JSON array of product records.
package snapshot

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
	"github.com/zantech/instantorder/internal/domain/catalog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func encode(products []catalog.Product) ([]byte, error) {
	if products == nil {
		products = []catalog.Product{}
	}
	return json.Marshal(products)
}

// decode treats an empty or whitespace-only payload as an empty catalog.
func decode(data []byte) ([]catalog.Product, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}
