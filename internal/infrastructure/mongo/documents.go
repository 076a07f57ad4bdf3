package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPointDocument は GeoJSON Point を表す。coordinates は
// [経度, 緯度] の順で格納される点に注意。
type GeoPointDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

// RatingsBreakdownDocument はカテゴリ別評価の埋め込み構造。レビューでは
// 投稿者のサブスコア、店舗ではその平均値を保持する。
type RatingsBreakdownDocument struct {
	FoodQuality   float64 `bson:"food_quality"`
	Service       float64 `bson:"service"`
	Ambiance      float64 `bson:"ambiance"`
	ValueForMoney float64 `bson:"value_for_money"`
	Cleanliness   float64 `bson:"cleanliness"`
}

// OpeningHoursDocument は曜日別の営業時間エントリ。
type OpeningHoursDocument struct {
	Day    string `bson:"day"`
	Open   string `bson:"open,omitempty"`
	Close  string `bson:"close,omitempty"`
	Closed bool   `bson:"closed,omitempty"`
}

// RestaurantDocument は MongoDB 上での店舗スキーマを Go 構造体として表現したもの。
// average_rating / total_reviews / ratings_breakdown はレビュー集計からの導出値で、
// ReviewRepository 経由の再計算でのみ更新される。
type RestaurantDocument struct {
	ID                  primitive.ObjectID       `bson:"_id"`
	BiomeID             primitive.ObjectID       `bson:"biome_id"`
	Name                string                   `bson:"name"`
	Description         string                   `bson:"description,omitempty"`
	CuisineStyle        string                   `bson:"cuisine_style,omitempty"`
	PriceRange          string                   `bson:"price_range,omitempty"`
	Capacity            int                      `bson:"capacity"`
	Status              string                   `bson:"status"`
	SustainabilityScore float64                  `bson:"sustainability_score,omitempty"`
	Location            *GeoPointDocument        `bson:"location,omitempty"`
	Address             string                   `bson:"address,omitempty"`
	AverageRating       float64                  `bson:"average_rating"`
	TotalReviews        int                      `bson:"total_reviews"`
	RatingsBreakdown    RatingsBreakdownDocument `bson:"ratings_breakdown"`
	OpeningHours        []OpeningHoursDocument   `bson:"opening_hours,omitempty"`
	CreatedAt           time.Time                `bson:"created_at"`
	UpdatedAt           time.Time                `bson:"updated_at"`
}

// ResponseDocument はレビューへの店舗返信の埋め込みドキュメント。
type ResponseDocument struct {
	FromRestaurant bool      `bson:"from_restaurant"`
	Reply          string    `bson:"reply"`
	RepliedAt      time.Time `bson:"replied_at"`
}

// ReviewDocument はレビューコレクションのスキーマを表現する。
type ReviewDocument struct {
	ID               primitive.ObjectID       `bson:"_id"`
	RestaurantID     primitive.ObjectID       `bson:"restaurant_id"`
	ReviewerName     string                   `bson:"reviewer_name"`
	ReviewerEmail    string                   `bson:"reviewer_email"`
	Rating           int                      `bson:"rating"`
	Title            string                   `bson:"title"`
	Comment          string                   `bson:"comment"`
	RatingsBreakdown RatingsBreakdownDocument `bson:"ratings_breakdown"`
	HelpfulVotes     int                      `bson:"helpful_votes"`
	VerifiedVisit    bool                     `bson:"verified_visit,omitempty"`
	Response         *ResponseDocument        `bson:"response,omitempty"`
	CreatedAt        time.Time                `bson:"created_at"`
	UpdatedAt        time.Time                `bson:"updated_at"`
}

// CustomerDocument は予約者情報の埋め込みドキュメント。
type CustomerDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone"`
}

// ReservationDocument は予約コレクションのスキーマを表現する。
// date は UTC 深夜 0 時、time は "HH:MM" 形式のスロット開始時刻。
type ReservationDocument struct {
	ID                 primitive.ObjectID `bson:"_id"`
	RestaurantID       primitive.ObjectID `bson:"restaurant_id"`
	ConfirmationCode   string             `bson:"confirmation_code"`
	Customer           CustomerDocument   `bson:"customer"`
	Date               time.Time          `bson:"date"`
	Time               string             `bson:"time"`
	PartySize          int                `bson:"party_size"`
	Status             string             `bson:"status"`
	SpecialRequests    string             `bson:"special_requests,omitempty"`
	ReminderSent       bool               `bson:"reminder_sent,omitempty"`
	CancelledAt        *time.Time         `bson:"cancelled_at,omitempty"`
	CancellationReason string             `bson:"cancellation_reason,omitempty"`
	CheckInTime        *time.Time         `bson:"check_in_time,omitempty"`
	CheckOutTime       *time.Time         `bson:"check_out_time,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

// BiomeDocument はテーマ環境(バイオーム)カタログのスキーマ。
type BiomeDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Code        string             `bson:"code"`
	Icon        string             `bson:"icon,omitempty"`
	Description string             `bson:"description,omitempty"`
	Climate     string             `bson:"climate,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}
