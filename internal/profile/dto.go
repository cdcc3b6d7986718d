package profile

type UpdatePreferencesRequest struct {
    MinAge           *int     `json:"min_age" validate:"omitempty,gte=18,lte=100"`
    MaxAge           *int     `json:"max_age" validate:"omitempty,gte=18,lte=100"`
    MaxDistanceKM    *float64 `json:"max_distance_km" validate:"omitempty,gt=0,lte=20000"`
    RelationshipType *string  `json:"relationship_type" validate:"omitempty,oneof=any casual serious friendship marriage"`
}
