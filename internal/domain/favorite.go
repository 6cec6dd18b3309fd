package domain

// Favorite columns. A favorite is only the (user, property) pair; the
// property itself is embedded on read under FavoritePropertyAlias.
const (
	FavColUserID     = "user_id"
	FavColPropertyID = "property_id"

	FavoritePropertyAlias = "property"
)
