package domain

import "time"

type Address struct {
	ID           int64     `json:"addressId"`
	UserID       string    `json:"-"`
	Street       string    `json:"street"`
	BuildingName string    `json:"buildingName"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	Pincode      string    `json:"pincode"`
	CreatedAt    time.Time `json:"createdAt"`
}
