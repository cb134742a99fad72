package colmap

// The catalogues below are the partner report vocabulary, kept as plain data
// so a new export column is a one line change. Source names are matched
// exactly, including case and internal whitespace, because the upstream
// report writer is deterministic about them

// ContributionColumns maps contribution report headers to canonical names
var ContributionColumns = map[string]string{
	"Contribution ID":                        "contribution_id",
	"VANID":                                  "vanid",
	"Date Received":                          "date_received",
	"Amount":                                 "amount",
	"Source Code":                            "source_code",
	"Designation":                            "designation",
	"Payment Method":                         "payment_method",
	"Remaining Amount":                       "remaining_amount",
	"Financial Batch":                        "financial_batch",
	"Card Type":                              "card_type",
	"Covered Costs":                          "covered_costs",
	"Covered Costs Amount":                   "covered_costs_amount",
	"First Contribution Date":                "first_contribution_date",
	"Form ID":                                "form_id",
	"Form Name":                              "form_name",
	"Is Recurring Commitment":                "is_recurring_commitment",
	"Mailing City":                           "mailing_city",
	"Mailing Country":                        "mailing_country",
	"Mailing State":                          "mailing_state",
	"Mailing Zip/Postal":                     "mailing_zip",
	"Online Reference Number":                "online_reference_number",
	"Personal Email":                         "email",
	"Preferred Phone Number":                 "phone",
	"Status":                                 "status",
	"Total Number of Contributions":          "total_number_of_contributions",
	"Digital Acquisition Data: UTM Campaign": "digital_utm_campaign",
	"Digital Acquisition Data: UTM Medium":   "digital_utm_medium",
	"Digital Acquisition Data: UTM Source":   "digital_utm_source",
	"utm_adid  (Exactius)":                   "utm_adid",
	"utm_campaign (Exactius)":                "utm_campaign",
	"utm_medium (Exactius)":                  "utm_medium",
	"utm_source (Exactius)":                  "utm_source",
	"uqaid  to  Facebook Ad ID (Exactius)":   "facebook_adid",
	"Recurring Commitment ID":                "recurring_commitment_id",
}

// RecurringCommitmentColumns maps the recurring commitment report headers,
// used for sustaining donor metrics
var RecurringCommitmentColumns = map[string]string{
	"Recurring Commitment ID":        "recurring_commitment_id",
	"VANID":                          "vanid",
	"Start Date":                     "start_date",
	"End Date":                       "end_date",
	"Amount":                         "amount",
	"Currency":                       "currency",
	"Frequency":                      "frequency",
	"Total Amount Received to Date":  "total_received",
	"Total Amount Expected to Date":  "total_expected",
	"Status":                         "status",
	"Payment Method":                 "payment_method",
	"Designation":                    "designation",
	"Financial Household ID":         "financial_household_id",
	"Source Code":                    "source_code",
}

// ContributionDateColumns are the canonical date bearing columns of the
// contribution report
var ContributionDateColumns = []string{"date_received", "first_contribution_date"}

// RecurringDateColumns are the canonical date bearing columns of the
// recurring commitment report
var RecurringDateColumns = []string{"start_date", "end_date"}

// ContributionIdentifier is the canonical column the row id is taken from
const ContributionIdentifier = "contribution_id"

// RecurringIdentifier is the id column for the recurring commitment report
const RecurringIdentifier = "recurring_commitment_id"
