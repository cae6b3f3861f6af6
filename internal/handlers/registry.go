package handlers

// AppHandlers holds every handler the router wires up.
type AppHandlers struct {
	AuthHandler *AuthHandler
	UserHandler *UserHandler
	JobHandler  *JobHandler
}
