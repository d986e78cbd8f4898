// Package models holds the gorm row types of the sql snapshot store and
// their conversions to catalog products.
package models
