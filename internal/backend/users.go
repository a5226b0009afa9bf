package backend

import "parkingconsole/internal/models"

// Users is the /user collection
type Users struct {
	*Resource[models.User, models.CreateUserRequest, models.UpdateUserRequest]
}

func newUsers(api *API) *Users {
	return &Users{newResource[models.User, models.CreateUserRequest, models.UpdateUserRequest](
		api, "users", "/user", Labels{Singular: "user", Plural: "users"})}
}
