package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ugurtm/ugur-backend/internal/middleware"
)

// Routes builds the API router. Health, the OpenAPI document, and the auth
// endpoints are public; everything else requires a bearer token.
func (s *Server) Routes(verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(verifier))

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Post("/auth/register", s.Register)
	r.Post("/auth/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/me", s.GetMe)
		r.Put("/me/roles", s.UpdateMyRoles)
		r.Patch("/me/driver-profile", s.UpdateMyDriverProfile)

		r.Get("/users", s.ListUsers)
		r.Get("/users/{id}", s.GetUser)
		r.Get("/users/{id}/reviews", s.ListUserReviews)

		r.Get("/driver-profiles", s.ListDriverProfiles)
		r.Get("/driver-profiles/{id}", s.GetDriverProfile)
		r.Get("/passenger-profiles", s.ListPassengerProfiles)
		r.Get("/passenger-profiles/{id}", s.GetPassengerProfile)

		r.Get("/places", s.ListPlaces)
		r.Post("/places", s.CreatePlace)
		r.Get("/places/{id}", s.GetPlace)
		r.Delete("/places/{id}", s.DeletePlace)

		r.Get("/ugurs", s.ListUgurs)
		r.Post("/ugurs", s.CreateUgur)
		r.Post("/ugurs/deactivate", s.DeactivateUgurs)
		r.Get("/ugurs/{id}", s.GetUgur)
		r.Patch("/ugurs/{id}", s.UpdateUgur)
		r.Delete("/ugurs/{id}", s.DeleteUgur)
		r.Post("/ugurs/{id}/view", s.ViewUgur)
		r.Put("/ugurs/{id}/driver", s.AssignUgurDriver)
		r.Post("/ugurs/{id}/routes", s.AddUgurRoute)

		r.Get("/routes", s.ListRoutes)
		r.Get("/routes/{id}", s.GetRoute)
		r.Patch("/routes/{id}", s.UpdateRoute)
		r.Delete("/routes/{id}", s.DeleteRoute)

		r.Get("/bookings", s.ListBookings)
		r.Post("/bookings", s.CreateBooking)
		r.Get("/bookings/{id}", s.GetBooking)
		r.Post("/bookings/{id}/status", s.ChangeBookingStatus)

		r.Get("/loads", s.ListLoads)
		r.Post("/loads", s.CreateLoad)
		r.Get("/loads/{id}", s.GetLoad)
		r.Put("/loads/{id}/attachment", s.AttachLoad)
		r.Post("/loads/{id}/status", s.ChangeLoadStatus)

		r.Get("/driver-notifications", s.ListNotifications)
		r.Post("/driver-notifications", s.CreateNotification)
		r.Post("/driver-notifications/{id}/seen", s.MarkNotificationSeen)

		r.Get("/device-tokens", s.ListDeviceTokens)
		r.Post("/device-tokens", s.RegisterDeviceToken)

		r.Get("/current-places", s.ListCurrentPlaces)
		r.Post("/current-places", s.CreateCurrentPlace)
		r.Delete("/current-places/{id}", s.DeleteCurrentPlace)

		r.Post("/reviews", s.CreateReview)

		r.Post("/import-old-ugur", s.ImportOldUgur)
	})
	return r
}
