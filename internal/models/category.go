package models

// Category is the reimbursement type (报销类型) of an invoice
type Category string

const (
	CategoryTravel        Category = "差旅费"
	CategoryConference    Category = "会议费"
	CategoryTraining      Category = "培训费"
	CategoryEntertainment Category = "招待费"
	CategoryMaintenance   Category = "维修费"
	CategoryOffice        Category = "办公费"
	CategoryTransport     Category = "交通费"
	CategoryCommunication Category = "通讯费"
	CategoryMeals         Category = "餐饮费"
	CategoryLodging       Category = "住宿费"
	CategoryOther         Category = "其他"
)

// Categories lists the closed set of reimbursement types in display order
var Categories = []Category{
	CategoryTravel,
	CategoryConference,
	CategoryTraining,
	CategoryEntertainment,
	CategoryMaintenance,
	CategoryOffice,
	CategoryTransport,
	CategoryCommunication,
	CategoryMeals,
	CategoryLodging,
	CategoryOther,
}

// IsValid reports whether c belongs to the closed set. The empty category is not valid.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }
