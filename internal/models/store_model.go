package models

import "time"

// Store is the tenant record. One document per store under "stores/{storeId}".
type Store struct {
	ID           string            `json:"id" firestore:"-"`
	OwnerID      string            `json:"ownerId" firestore:"ownerId"`
	BasicInfo    BasicInfo         `json:"basicInfo" firestore:"basicInfo"`
	ContactInfo  ContactInfo       `json:"contactInfo" firestore:"contactInfo"`
	Address      Address           `json:"address" firestore:"address"`
	Schedule     Schedule          `json:"schedule" firestore:"schedule"`
	SocialLinks  SocialLinks       `json:"socialLinks" firestore:"socialLinks"`
	Theme        Theme             `json:"theme" firestore:"theme"`
	Settings     StoreSettings     `json:"settings" firestore:"settings"`
	Subscription StoreSubscription `json:"subscription" firestore:"subscription"`
	CreatedAt    time.Time         `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time         `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// BasicInfo holds the public identity of a store.
type BasicInfo struct {
	Name        string `json:"name" firestore:"name"`
	Description string `json:"description,omitempty" firestore:"description,omitempty"`
	Slug        string `json:"slug" firestore:"slug"`
	Type        string `json:"type,omitempty" firestore:"type,omitempty"`
	Category    string `json:"category,omitempty" firestore:"category,omitempty"`
}

type ContactInfo struct {
	WhatsApp string `json:"whatsapp,omitempty" firestore:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty" firestore:"email,omitempty"`
	Phone    string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Website  string `json:"website,omitempty" firestore:"website,omitempty"`
}

type Address struct {
	Street   string `json:"street,omitempty" firestore:"street,omitempty"`
	City     string `json:"city,omitempty" firestore:"city,omitempty"`
	Province string `json:"province,omitempty" firestore:"province,omitempty"`
	Country  string `json:"country,omitempty" firestore:"country,omitempty"`
	ZipCode  string `json:"zipCode,omitempty" firestore:"zipCode,omitempty"`
	MapsURL  string `json:"mapsUrl,omitempty" firestore:"mapsUrl,omitempty"`
}

// DaySchedule is the opening window for one weekday. From/To are "HH:MM".
type DaySchedule struct {
	Open bool   `json:"open" firestore:"open"`
	From string `json:"from,omitempty" firestore:"from,omitempty"`
	To   string `json:"to,omitempty" firestore:"to,omitempty"`
}

type Schedule struct {
	Monday    *DaySchedule `json:"monday,omitempty" firestore:"monday,omitempty"`
	Tuesday   *DaySchedule `json:"tuesday,omitempty" firestore:"tuesday,omitempty"`
	Wednesday *DaySchedule `json:"wednesday,omitempty" firestore:"wednesday,omitempty"`
	Thursday  *DaySchedule `json:"thursday,omitempty" firestore:"thursday,omitempty"`
	Friday    *DaySchedule `json:"friday,omitempty" firestore:"friday,omitempty"`
	Saturday  *DaySchedule `json:"saturday,omitempty" firestore:"saturday,omitempty"`
	Sunday    *DaySchedule `json:"sunday,omitempty" firestore:"sunday,omitempty"`
	Timezone  string       `json:"timezone,omitempty" firestore:"timezone,omitempty"`
}

type SocialLinks struct {
	Instagram string `json:"instagram,omitempty" firestore:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty" firestore:"facebook,omitempty"`
	TikTok    string `json:"tiktok,omitempty" firestore:"tiktok,omitempty"`
	Twitter   string `json:"twitter,omitempty" firestore:"twitter,omitempty"`
	YouTube   string `json:"youtube,omitempty" firestore:"youtube,omitempty"`
}

type Theme struct {
	PrimaryColor   string `json:"primaryColor,omitempty" firestore:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty" firestore:"secondaryColor,omitempty"`
	AccentColor    string `json:"accentColor,omitempty" firestore:"accentColor,omitempty"`
	LogoURL        string `json:"logoUrl,omitempty" firestore:"logoUrl,omitempty"`
	BannerURL      string `json:"bannerUrl,omitempty" firestore:"bannerUrl,omitempty"`
	FontFamily     string `json:"fontFamily,omitempty" firestore:"fontFamily,omitempty"`
	Style          string `json:"style,omitempty" firestore:"style,omitempty"`
}

// StoreSettings groups the checkout-facing options of a store.
type StoreSettings struct {
	Payment  PaymentSettings  `json:"payment" firestore:"payment"`
	Delivery DeliverySettings `json:"delivery" firestore:"delivery"`
}

type PaymentSettings struct {
	Cash          bool   `json:"cash" firestore:"cash"`
	Transfer      bool   `json:"transfer" firestore:"transfer"`
	Card          bool   `json:"card" firestore:"card"`
	MercadoPago   bool   `json:"mercadoPago" firestore:"mercadoPago"`
	TransferAlias string `json:"transferAlias,omitempty" firestore:"transferAlias,omitempty"`
	Currency      string `json:"currency,omitempty" firestore:"currency,omitempty"`
}

type DeliverySettings struct {
	Pickup       bool     `json:"pickup" firestore:"pickup"`
	Delivery     bool     `json:"delivery" firestore:"delivery"`
	DeliveryFee  float64  `json:"deliveryFee" firestore:"deliveryFee"`
	MinimumOrder float64  `json:"minimumOrder" firestore:"minimumOrder"`
	Zones        []string `json:"zones,omitempty" firestore:"zones,omitempty"`
}

// StoreSubscription is the denormalized subscription summary kept on the store
// so the storefront and dashboard can gate features without a second read.
type StoreSubscription struct {
	PlanID         string `json:"planId,omitempty" firestore:"planId,omitempty"`
	Status         string `json:"status,omitempty" firestore:"status,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty" firestore:"subscriptionId,omitempty"`
}

// PublicStore is the storefront projection of a store. Owner and billing data are omitted.
type PublicStore struct {
	ID          string        `json:"id"`
	BasicInfo   BasicInfo     `json:"basicInfo"`
	ContactInfo ContactInfo   `json:"contactInfo"`
	Address     Address       `json:"address"`
	Schedule    Schedule      `json:"schedule"`
	SocialLinks SocialLinks   `json:"socialLinks"`
	Theme       Theme         `json:"theme"`
	Settings    StoreSettings `json:"settings"`
}

// Public returns the storefront projection of s.
func (s *Store) Public() PublicStore {
	return PublicStore{
		ID:          s.ID,
		BasicInfo:   s.BasicInfo,
		ContactInfo: s.ContactInfo,
		Address:     s.Address,
		Schedule:    s.Schedule,
		SocialLinks: s.SocialLinks,
		Theme:       s.Theme,
		Settings:    s.Settings,
	}
}
