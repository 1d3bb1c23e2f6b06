package scoring

// DefaultKeywords are the billing and contract terms counted by CIS
var DefaultKeywords = []string{
	"월요금", "사은품", "위약금", "결합", "설치일", "설치비", "약정",
	"지원금", "할인", "통신사", "요금제", "인터넷", "휴대폰",
}

// DefaultApplicationMarker is the application-form URL counted by ALS
const DefaultApplicationMarker = "https://form.ajd.co.kr/"

// Params holds the tunable constants of the scoring model
type Params struct {
	// Keywords marks an assisted message as informative (CIS)
	Keywords []string `json:"keywords" yaml:"keywords"`

	// ApplicationMarker marks an assisted message as an application-form link (ALS)
	ApplicationMarker string `json:"applicationMarker" yaml:"application_marker"`

	// ApplicationLinkPoints is the ALS value of one application link
	ApplicationLinkPoints float64 `json:"applicationLinkPoints" yaml:"application_link_points"`

	// ALSWeight scales the normalized ALS into the assist-score correction
	ALSWeight float64 `json:"alsWeight" yaml:"als_weight"`

	// AssignedCorrection is the owned-score correction. Zero keeps owned
	// scores uncorrected.
	AssignedCorrection float64 `json:"assignedCorrection" yaml:"assigned_correction"`

	// OwnedPoolRatio is the target ratio of the owned-score pool to the
	// assist-score pool after rebalancing
	OwnedPoolRatio float64 `json:"ownedPoolRatio" yaml:"owned_pool_ratio"`

	// MinMessagesFloor is the flat floor an agent's message total must exceed
	MinMessagesFloor int `json:"minMessagesFloor" yaml:"min_messages_floor"`

	// MessagesPerDay scales the period-dependent message floor
	MessagesPerDay int `json:"messagesPerDay" yaml:"messages_per_day"`
}

// DefaultParams returns the production scoring constants
func DefaultParams() Params {
	return Params{
		Keywords:              append([]string(nil), DefaultKeywords...),
		ApplicationMarker:     DefaultApplicationMarker,
		ApplicationLinkPoints: 10,
		ALSWeight:             3,
		AssignedCorrection:    0,
		OwnedPoolRatio:        1.0 / 3.0,
		MinMessagesFloor:      10,
		MessagesPerDay:        10,
	}
}
