package dto

import "equipment-system/internal/entities"

type SaveFloorplanDTO struct {
	Items entities.FloorplanItems `json:"items"`
}

type FloorplanDTO struct {
	Floor         int                     `json:"floor"`
	Items         entities.FloorplanItems `json:"items"`
	ItemIDCounter int64                   `json:"itemIdCounter"`
}
