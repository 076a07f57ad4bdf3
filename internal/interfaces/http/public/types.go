package public

import (
	"time"

	bookingdomain "github.com/biomebistro/biome-bistro-services/api/internal/booking/domain"
	catalogdomain "github.com/biomebistro/biome-bistro-services/api/internal/catalog/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/geo"
)

type biomeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	Climate     string `json:"climate,omitempty"`
}

type coordinatesPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ratingsBreakdownPayload struct {
	FoodQuality   float64 `json:"food_quality"`
	Service       float64 `json:"service"`
	Ambiance      float64 `json:"ambiance"`
	ValueForMoney float64 `json:"value_for_money"`
	Cleanliness   float64 `json:"cleanliness"`
}

type openingHoursPayload struct {
	Day    string `json:"day"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

type restaurantSummaryResponse struct {
	ID            string              `json:"id"`
	BiomeID       string              `json:"biome_id"`
	Name          string              `json:"name"`
	CuisineStyle  string              `json:"cuisine_style,omitempty"`
	PriceRange    string              `json:"price_range,omitempty"`
	AverageRating float64             `json:"average_rating"`
	TotalReviews  int                 `json:"total_reviews"`
	Address       string              `json:"address,omitempty"`
	Location      *coordinatesPayload `json:"location,omitempty"`
	DistanceKm    *float64            `json:"distance_km,omitempty"`
	DistanceLabel string              `json:"distance_label,omitempty"`
}

type restaurantDetailResponse struct {
	ID                  string                  `json:"id"`
	BiomeID             string                  `json:"biome_id"`
	Name                string                  `json:"name"`
	Description         string                  `json:"description,omitempty"`
	CuisineStyle        string                  `json:"cuisine_style,omitempty"`
	PriceRange          string                  `json:"price_range,omitempty"`
	Capacity            int                     `json:"capacity"`
	Status              string                  `json:"status"`
	SustainabilityScore float64                 `json:"sustainability_score,omitempty"`
	Address             string                  `json:"address,omitempty"`
	Location            *coordinatesPayload     `json:"location,omitempty"`
	AverageRating       float64                 `json:"average_rating"`
	TotalReviews        int                     `json:"total_reviews"`
	RatingsBreakdown    ratingsBreakdownPayload `json:"ratings_breakdown"`
	OpeningHours        []openingHoursPayload   `json:"opening_hours,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

type restaurantListResponse struct {
	Items []restaurantSummaryResponse `json:"items"`
	Total int                         `json:"total"`
}

type reviewResponsePayload struct {
	FromRestaurant bool      `json:"from_restaurant"`
	Reply          string    `json:"reply"`
	RepliedAt      time.Time `json:"replied_at"`
}

type reviewResponse struct {
	ID               string                  `json:"id"`
	RestaurantID     string                  `json:"restaurant_id"`
	ReviewerName     string                  `json:"reviewer_name"`
	Rating           int                     `json:"rating"`
	Title            string                  `json:"title"`
	Comment          string                  `json:"comment"`
	RatingsBreakdown ratingsBreakdownPayload `json:"ratings_breakdown"`
	HelpfulVotes     int                     `json:"helpful_votes"`
	VerifiedVisit    bool                    `json:"verified_visit,omitempty"`
	Response         *reviewResponsePayload  `json:"response,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

type reviewListResponse struct {
	Items []reviewResponse `json:"items"`
	Total int              `json:"total"`
}

type reservationResponse struct {
	ID                 string     `json:"id"`
	RestaurantID       string     `json:"restaurant_id"`
	ConfirmationCode   string     `json:"confirmation_code"`
	CustomerName       string     `json:"customer_name"`
	CustomerEmail      string     `json:"customer_email"`
	CustomerPhone      string     `json:"customer_phone"`
	Date               string     `json:"date"`
	Time               string     `json:"time"`
	PartySize          int        `json:"party_size"`
	Status             string     `json:"status"`
	SpecialRequests    string     `json:"special_requests,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CheckInTime        *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime       *time.Time `json:"check_out_time,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type reservationListResponse struct {
	Items []reservationResponse `json:"items"`
	Total int                   `json:"total"`
}

type availabilityResponse struct {
	RestaurantID string `json:"restaurant_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	PartySize    int    `json:"party_size"`
	Available    bool   `json:"available"`
}

type openSlotsResponse struct {
	RestaurantID string   `json:"restaurant_id"`
	Date         string   `json:"date"`
	Slots        []string `json:"slots"`
}

type reviewCreateRequest struct {
	RestaurantID     string                   `json:"restaurant_id"`
	ReviewerName     string                   `json:"reviewer_name"`
	ReviewerEmail    string                   `json:"reviewer_email"`
	Rating           int                      `json:"rating"`
	Title            string                   `json:"title"`
	Comment          string                   `json:"comment"`
	RatingsBreakdown *ratingsBreakdownPayload `json:"ratings_breakdown,omitempty"`
	VerifiedVisit    bool                     `json:"verified_visit,omitempty"`
}

type reviewUpdateRequest struct {
	ReviewerEmail    string                   `json:"reviewer_email"`
	Rating           *int                     `json:"rating,omitempty"`
	Title            *string                  `json:"title,omitempty"`
	Comment          *string                  `json:"comment,omitempty"`
	RatingsBreakdown *ratingsBreakdownPayload `json:"ratings_breakdown,omitempty"`
}

type reviewResponseRequest struct {
	Reply string `json:"reply"`
}

type reservationCreateRequest struct {
	RestaurantID    string `json:"restaurant_id"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	PartySize       int    `json:"party_size"`
	Status          string `json:"status,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

type reservationUpdateRequest struct {
	CustomerName    *string `json:"customer_name,omitempty"`
	CustomerPhone   *string `json:"customer_phone,omitempty"`
	Date            *string `json:"date,omitempty"`
	Time            *string `json:"time,omitempty"`
	PartySize       *int    `json:"party_size,omitempty"`
	Status          *string `json:"status,omitempty"`
	SpecialRequests *string `json:"special_requests,omitempty"`
}

type reservationCancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

func buildBiomeResponse(b catalogdomain.Biome) biomeResponse {
	return biomeResponse{
		ID:          b.ID,
		Name:        b.Name,
		Code:        b.Code,
		Icon:        b.Icon,
		Description: b.Description,
		Climate:     b.Climate,
	}
}

func buildCoordinatesPayload(c *catalogdomain.Coordinates) *coordinatesPayload {
	if c == nil {
		return nil
	}
	return &coordinatesPayload{Latitude: c.Latitude, Longitude: c.Longitude}
}

func buildBreakdownPayload(b catalogdomain.RatingBreakdown) ratingsBreakdownPayload {
	return ratingsBreakdownPayload{
		FoodQuality:   b.FoodQuality,
		Service:       b.Service,
		Ambiance:      b.Ambiance,
		ValueForMoney: b.ValueForMoney,
		Cleanliness:   b.Cleanliness,
	}
}

// buildRestaurantSummaryResponse は一覧表示用 DTO への変換。
func buildRestaurantSummaryResponse(r catalogdomain.Restaurant) restaurantSummaryResponse {
	return restaurantSummaryResponse{
		ID:            r.ID,
		BiomeID:       r.BiomeID,
		Name:          r.Name,
		CuisineStyle:  r.CuisineStyle,
		PriceRange:    r.PriceRange,
		AverageRating: r.AverageRating,
		TotalReviews:  r.TotalReviews,
		Address:       r.Address,
		Location:      buildCoordinatesPayload(r.Location),
	}
}

func buildRestaurantWithDistanceResponse(r catalogdomain.RestaurantWithDistance) restaurantSummaryResponse {
	resp := buildRestaurantSummaryResponse(r.Restaurant)
	d := r.DistanceKm
	resp.DistanceKm = &d
	resp.DistanceLabel = geo.FormatDistance(d)
	return resp
}

func buildRestaurantDetailResponse(r catalogdomain.Restaurant) restaurantDetailResponse {
	hours := make([]openingHoursPayload, 0, len(r.OpeningHours))
	for _, h := range r.OpeningHours {
		hours = append(hours, openingHoursPayload{Day: h.Day, Open: h.Open, Close: h.Close, Closed: h.Closed})
	}
	return restaurantDetailResponse{
		ID:                  r.ID,
		BiomeID:             r.BiomeID,
		Name:                r.Name,
		Description:         r.Description,
		CuisineStyle:        r.CuisineStyle,
		PriceRange:          r.PriceRange,
		Capacity:            r.Capacity,
		Status:              r.Status,
		SustainabilityScore: r.SustainabilityScore,
		Address:             r.Address,
		Location:            buildCoordinatesPayload(r.Location),
		AverageRating:       r.AverageRating,
		TotalReviews:        r.TotalReviews,
		RatingsBreakdown:    buildBreakdownPayload(r.RatingsBreakdown),
		OpeningHours:        hours,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func buildReviewResponse(rev catalogdomain.Review) reviewResponse {
	var response *reviewResponsePayload
	if rev.Response != nil {
		response = &reviewResponsePayload{
			FromRestaurant: rev.Response.FromRestaurant,
			Reply:          rev.Response.Reply,
			RepliedAt:      rev.Response.RepliedAt,
		}
	}
	return reviewResponse{
		ID:               rev.ID,
		RestaurantID:     rev.RestaurantID,
		ReviewerName:     rev.ReviewerName,
		Rating:           rev.Rating,
		Title:            rev.Title,
		Comment:          rev.Comment,
		RatingsBreakdown: buildBreakdownPayload(rev.RatingsBreakdown),
		HelpfulVotes:     rev.HelpfulVotes,
		VerifiedVisit:    rev.VerifiedVisit,
		Response:         response,
		CreatedAt:        rev.CreatedAt,
	}
}

func buildReviewListResponse(reviews []catalogdomain.Review) reviewListResponse {
	items := make([]reviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		items = append(items, buildReviewResponse(rev))
	}
	return reviewListResponse{Items: items, Total: len(items)}
}

func buildReservationResponse(res bookingdomain.Reservation) reservationResponse {
	return reservationResponse{
		ID:                 res.ID,
		RestaurantID:       res.RestaurantID,
		ConfirmationCode:   res.ConfirmationCode,
		CustomerName:       res.Customer.Name,
		CustomerEmail:      res.Customer.Email,
		CustomerPhone:      res.Customer.Phone,
		Date:               res.Date.Format("2006-01-02"),
		Time:               res.Time,
		PartySize:          res.PartySize,
		Status:             string(res.Status),
		SpecialRequests:    res.SpecialRequests,
		CancelledAt:        res.CancelledAt,
		CancellationReason: res.CancellationReason,
		CheckInTime:        res.CheckInTime,
		CheckOutTime:       res.CheckOutTime,
		CreatedAt:          res.CreatedAt,
	}
}

func buildReservationListResponse(reservations []bookingdomain.Reservation) reservationListResponse {
	items := make([]reservationResponse, 0, len(reservations))
	for _, res := range reservations {
		items = append(items, buildReservationResponse(res))
	}
	return reservationListResponse{Items: items, Total: len(items)}
}

func domainBreakdown(p *ratingsBreakdownPayload) *catalogdomain.RatingBreakdown {
	if p == nil {
		return nil
	}
	return &catalogdomain.RatingBreakdown{
		FoodQuality:   p.FoodQuality,
		Service:       p.Service,
		Ambiance:      p.Ambiance,
		ValueForMoney: p.ValueForMoney,
		Cleanliness:   p.Cleanliness,
	}
}
