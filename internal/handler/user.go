package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// UserResponse is the public view of a user. The password hash never
// leaves the service layer.
type UserResponse struct {
	ID          int64     `json:"id"`
	Phone       string    `json:"phone"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	IsDriver    bool      `json:"is_driver"`
	IsPassenger bool      `json:"is_passenger"`
	IsStaff     bool      `json:"is_staff"`
	IsActive    bool      `json:"is_active"`
	DateJoined  time.Time `json:"date_joined"`
}

type DriverProfileResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Color      string    `json:"color"`
	Plate      string    `json:"plate"`
	CarYear    *int      `json:"car_year"`
	CarDisplay string    `json:"car_display"`
	Rating     float64   `json:"rating"`
	TripCount  int       `json:"trip_count"`
	IsVerified bool      `json:"is_verified"`
	OnDuty     bool      `json:"on_duty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type PassengerProfileResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Rating         float64   `json:"rating"`
	CompletedRides int       `json:"completed_rides"`
	CreatedAt      time.Time `json:"created_at"`
}

// AccountResponse is a user plus whichever profiles it holds.
type AccountResponse struct {
	User             UserResponse              `json:"user"`
	DriverProfile    *DriverProfileResponse    `json:"driver_profile"`
	PassengerProfile *PassengerProfileResponse `json:"passenger_profile"`
}

type DriverProfileRequest struct {
	Make    *string `json:"make"`
	Model   *string `json:"model"`
	Color   *string `json:"color"`
	Plate   *string `json:"plate"`
	CarYear *int    `json:"car_year"`
}

type RegisterRequest struct {
	Phone         string                `json:"phone"`
	FirstName     string                `json:"first_name"`
	LastName      string                `json:"last_name"`
	Password      string                `json:"password"`
	IsDriver      bool                  `json:"is_driver"`
	IsPassenger   bool                  `json:"is_passenger"`
	DriverProfile *DriverProfileRequest `json:"driver_profile"`
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Role      string       `json:"role"`
	User      UserResponse `json:"user"`
}

type RolesRequest struct {
	IsDriver      bool                  `json:"is_driver"`
	IsPassenger   bool                  `json:"is_passenger"`
	DriverProfile *DriverProfileRequest `json:"driver_profile"`
}

// Register handles POST /auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	acct, err := s.svc.Users.Register(r.Context(), domain.Registration{
		Phone:         strings.TrimSpace(req.Phone),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Password:      req.Password,
		IsDriver:      req.IsDriver,
		IsPassenger:   req.IsPassenger,
		DriverProfile: req.DriverProfile.toPatch(),
	})
	if err != nil {
		fail(w, r, "user", err)
		return
	}
	writeJSON(w, http.StatusCreated, accountToResponse(acct))
}

// Login handles POST /auth/login. The token is bound to the requested role.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	role := domain.LoginRole(strings.ToLower(strings.TrimSpace(req.Role)))
	u, err := s.svc.Users.Login(r.Context(), strings.TrimSpace(req.Phone), req.Password, role)
	if err != nil {
		fail(w, r, "user", err)
		return
	}
	token, exp, err := s.svc.Tokens.Issue(u.ID, role)
	if err != nil {
		fail(w, r, "user", err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp, Role: string(role), User: userToResponse(u)})
}

// GetMe handles GET /me.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	acct, err := s.svc.Users.GetAccount(r.Context(), actorID(r))
	if err != nil {
		fail(w, r, "user", err)
		return
	}
	writeJSON(w, http.StatusOK, accountToResponse(acct))
}

// UpdateMyRoles handles PUT /me/roles.
func (s *Server) UpdateMyRoles(w http.ResponseWriter, r *http.Request) {
	var req RolesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	acct, err := s.svc.Users.UpdateRoles(r.Context(), actorID(r), domain.RoleUpdate{
		IsDriver:      req.IsDriver,
		IsPassenger:   req.IsPassenger,
		DriverProfile: req.DriverProfile.toPatch(),
	})
	if err != nil {
		fail(w, r, "user", err)
		return
	}
	writeJSON(w, http.StatusOK, accountToResponse(acct))
}

// UpdateMyDriverProfile handles PATCH /me/driver-profile.
func (s *Server) UpdateMyDriverProfile(w http.ResponseWriter, r *http.Request) {
	var req DriverProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	dp, err := s.svc.Users.UpdateDriverProfile(r.Context(), actorID(r), *req.toPatch())
	if err != nil {
		fail(w, r, "driver profile", err)
		return
	}
	writeJSON(w, http.StatusOK, driverProfileToResponse(dp))
}

// ListUsers handles GET /users?q=.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.Users.List(r.Context(), domain.UserFilter{Query: q.str("q")}, p)
	if err != nil {
		fail(w, r, "user", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, userToResponse))
}

// GetUser handles GET /users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	acct, err := s.svc.Users.GetAccount(r.Context(), id)
	if err != nil {
		fail(w, r, "user", err)
		return
	}
	writeJSON(w, http.StatusOK, accountToResponse(acct))
}

// ListDriverProfiles handles GET /driver-profiles.
func (s *Server) ListDriverProfiles(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.Profiles.ListDrivers(r.Context(), p)
	if err != nil {
		fail(w, r, "driver profile", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, driverProfileToResponse))
}

// GetDriverProfile handles GET /driver-profiles/{id}.
func (s *Server) GetDriverProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	dp, err := s.svc.Profiles.GetDriver(r.Context(), id)
	if err != nil {
		fail(w, r, "driver profile", err)
		return
	}
	writeJSON(w, http.StatusOK, driverProfileToResponse(dp))
}

// ListPassengerProfiles handles GET /passenger-profiles.
func (s *Server) ListPassengerProfiles(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.Profiles.ListPassengers(r.Context(), p)
	if err != nil {
		fail(w, r, "passenger profile", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, passengerProfileToResponse))
}

// GetPassengerProfile handles GET /passenger-profiles/{id}.
func (s *Server) GetPassengerProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pp, err := s.svc.Profiles.GetPassenger(r.Context(), id)
	if err != nil {
		fail(w, r, "passenger profile", err)
		return
	}
	writeJSON(w, http.StatusOK, passengerProfileToResponse(pp))
}

// toPatch converts the optional request object; nil stays nil.
func (d *DriverProfileRequest) toPatch() *domain.DriverProfilePatch {
	if d == nil {
		return nil
	}
	return &domain.DriverProfilePatch{Make: d.Make, Model: d.Model, Color: d.Color, Plate: d.Plate, CarYear: d.CarYear}
}

func userToResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Phone:       u.Phone,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		IsDriver:    u.IsDriver,
		IsPassenger: u.IsPassenger,
		IsStaff:     u.IsStaff,
		IsActive:    u.IsActive,
		DateJoined:  u.DateJoined,
	}
}

func driverProfileToResponse(p domain.DriverProfile) DriverProfileResponse {
	return DriverProfileResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Make:       p.Make,
		Model:      p.Model,
		Color:      p.Color,
		Plate:      p.Plate,
		CarYear:    p.CarYear,
		CarDisplay: p.CarDisplay(),
		Rating:     p.Rating,
		TripCount:  p.TripCount,
		IsVerified: p.IsVerified,
		OnDuty:     p.OnDuty,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func passengerProfileToResponse(p domain.PassengerProfile) PassengerProfileResponse {
	return PassengerProfileResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		Rating:         p.Rating,
		CompletedRides: p.CompletedRides,
		CreatedAt:      p.CreatedAt,
	}
}

func accountToResponse(a domain.Account) AccountResponse {
	resp := AccountResponse{User: userToResponse(a.User)}
	if a.Driver != nil {
		dp := driverProfileToResponse(*a.Driver)
		resp.DriverProfile = &dp
	}
	if a.Passenger != nil {
		pp := passengerProfileToResponse(*a.Passenger)
		resp.PassengerProfile = &pp
	}
	return resp
}
