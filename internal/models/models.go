// Package models содержит доменные структуры тарифного сервиса:
// пользователей, тарифные планы, подписки, оповещения и записи аудита,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Статусы подписки. У одного пользователя в любой момент времени
// может быть не более одной подписки со статусом StatusActive.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Типы оповещений.
const (
	AlertTypePlanExpiry = "plan_expiry"
	AlertTypeSystem     = "system"
)

// Действия, фиксируемые в журнале аудита.
const (
	ActionUserSignup    = "user_signup"
	ActionUserLogin     = "user_login"
	ActionPlanPurchased = "plan_purchased"
	ActionPlanCancelled = "plan_cancelled"
	ActionPlanCreated   = "plan_created"
	ActionPlanUpdated   = "plan_updated"
)

// User представляет учётную запись пользователя.
// UID генерируется при регистрации и используется как идентификатор
// во всех операциях сервиса.
type User struct {
	UID          string    `json:"uid"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Plan описывает тарифный план: цена и квота фиксируются за месяц.
// Планы создаются и редактируются администратором, бизнес-логика
// подписок их никогда не изменяет.
type Plan struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	MonthlyPrice   float64 `json:"monthly_price"`
	MonthlyQuotaGB int     `json:"monthly_quota_gb"`
	IsActive       bool    `json:"is_active"`
}

// Subscription — центральная сущность сервиса.
// EndDate равен nil, пока подписка активна.
// PricePaid — цена плана на момент покупки, она не меняется
// при последующем редактировании плана администратором.
type Subscription struct {
	ID        int        `json:"id"`
	UserUID   string     `json:"user_uid"`
	PlanID    int        `json:"plan_id"`
	Status    string     `json:"status"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	PricePaid float64    `json:"price_paid"`
}

// Alert — оповещение пользователя. SubscriptionID заполняется для
// оповещений, связанных с конкретной подпиской, и входит в ключ
// дедупликации при ежедневном сканировании.
type Alert struct {
	ID             int       `json:"id"`
	UserUID        string    `json:"user_uid"`
	SubscriptionID *int      `json:"subscription_id,omitempty"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuditEntry — неизменяемая запись журнала аудита.
// OldValues и NewValues хранят снимки изменённых полей и могут быть nil.
type AuditEntry struct {
	ID        int64          `json:"id"`
	UserUID   string         `json:"user_uid"`
	Action    string         `json:"action"`
	TableName string         `json:"table_name"`
	RecordID  string         `json:"record_id"`
	OldValues map[string]any `json:"old_values,omitempty"`
	NewValues map[string]any `json:"new_values,omitempty"`
	IPAddress string         `json:"ip_address"`
	UserAgent string         `json:"user_agent"`
	CreatedAt time.Time      `json:"created_at"`
}

// RequestMeta — метаданные входящего запроса для журнала аудита.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// ExpiringSubscription — результат выборки подписок, истекающих
// в заданную дату; используется сканером и отправителем уведомлений.
type ExpiringSubscription struct {
	SubscriptionID int       `json:"subscription_id"`
	UserUID        string    `json:"user_uid"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PlanName       string    `json:"plan_name"`
	EndDate        time.Time `json:"end_date"`
}

// DummySignup используется для приёма данных регистрации из JSON-запроса.
type DummySignup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyPurchase используется для приёма запроса на покупку плана.
// Идентификатор пользователя берётся из контекста аутентификации,
// а не из тела запроса.
type DummyPurchase struct {
	PlanID int `json:"plan_id" validate:"required,gt=0"`
}

// DummyPlan используется для приёма данных плана от администратора.
type DummyPlan struct {
	Name           string  `json:"name" validate:"required"`
	Description    string  `json:"description"`
	MonthlyPrice   float64 `json:"monthly_price" validate:"required,gt=0"`
	MonthlyQuotaGB int     `json:"monthly_quota_gb" validate:"required,gt=0"`
	IsActive       bool    `json:"is_active"`
}
