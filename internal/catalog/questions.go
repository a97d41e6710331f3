package catalog

import (
	"fmt"

	"bloodlink-service/internal/domain"
)

// GameBloodFacts is the game identifier for the blood facts challenge.
const GameBloodFacts = "blood_facts_challenge"

// RoundLength is the number of questions per round, regardless of bank size.
const RoundLength = 10

// BloodFacts returns the fixed blood-facts question bank.
func BloodFacts() domain.TriviaCatalog {
	return domain.TriviaCatalog{
		Game: GameBloodFacts,
		Questions: []domain.TriviaQuestion{
			{
				Prompt:       "How many pints of blood does the average adult human body contain?",
				Choices:      []string{"6 pints", "8-10 pints", "12-14 pints", "15-18 pints"},
				CorrectIndex: 1,
				Explanation:  "The average adult human body contains about 8-10 pints of blood, which is approximately 4.5 to 5.7 liters.",
			},
			{
				Prompt:       "What percentage of your body weight is blood?",
				Choices:      []string{"4-5%", "7-8%", "10-12%", "15-17%"},
				CorrectIndex: 1,
				Explanation:  "Blood makes up approximately 7-8% of your total body weight.",
			},
			{
				Prompt:       "Which blood type is considered the universal donor?",
				Choices:      []string{"A+", "B-", "AB+", "O-"},
				CorrectIndex: 3,
				Explanation:  "O- is the universal donor because it has no A or B antigens and no Rh factor, making it compatible with all other blood types.",
			},
			{
				Prompt:       "Which blood type is considered the universal recipient?",
				Choices:      []string{"O+", "AB+", "A-", "B+"},
				CorrectIndex: 1,
				Explanation:  "AB+ is the universal recipient because it has both A and B antigens and the Rh factor, allowing it to receive blood from any type.",
			},
			{
				Prompt:       "How often can a person donate whole blood?",
				Choices:      []string{"Every 2 weeks", "Every 56 days (8 weeks)", "Every 4 months", "Every 6 months"},
				CorrectIndex: 1,
				Explanation:  "Donors must wait at least 56 days (8 weeks) between whole blood donations to allow their bodies to replenish the red blood cells.",
			},
			{
				Prompt:       "What is the most common blood type?",
				Choices:      []string{"A+", "B+", "O+", "AB-"},
				CorrectIndex: 2,
				Explanation:  "O+ is the most common blood type, with about 38% of the population having this type.",
			},
			{
				Prompt:       "How long does the actual blood donation process take?",
				Choices:      []string{"5-10 minutes", "10-15 minutes", "20-30 minutes", "45-60 minutes"},
				CorrectIndex: 1,
				Explanation:  "The actual blood donation typically takes only 10-15 minutes, though the entire process including screening and paperwork takes about an hour.",
			},
			{
				Prompt:       "What is the shelf life of donated red blood cells?",
				Choices:      []string{"24 hours", "1 week", "42 days", "1 year"},
				CorrectIndex: 2,
				Explanation:  "Red blood cells can be stored for up to 42 days when refrigerated properly.",
			},
			{
				Prompt:       "Which component of blood carries oxygen throughout the body?",
				Choices:      []string{"White blood cells", "Platelets", "Red blood cells", "Plasma"},
				CorrectIndex: 2,
				Explanation:  "Red blood cells contain hemoglobin, which binds with oxygen and transports it throughout the body.",
			},
			{
				Prompt:       "How many lives can be saved with one blood donation?",
				Choices:      []string{"1 life", "Up to 3 lives", "Up to 5 lives", "Up to 10 lives"},
				CorrectIndex: 1,
				Explanation:  "A single blood donation can save up to 3 lives because blood is separated into red cells, platelets, and plasma that can be used for different patients.",
			},
			{
				Prompt:       "What percentage of the world's population is eligible to donate blood?",
				Choices:      []string{"Less than 38%", "About 50%", "About 65%", "Over 80%"},
				CorrectIndex: 0,
				Explanation:  "Less than 38% of the world's population is eligible to donate blood due to various health conditions, medications, and age restrictions.",
			},
			{
				Prompt:       "What component of blood helps in blood clotting?",
				Choices:      []string{"Red blood cells", "White blood cells", "Platelets", "Plasma"},
				CorrectIndex: 2,
				Explanation:  "Platelets are tiny cell fragments that help the blood clotting process by forming plugs in blood vessel holes.",
			},
			{
				Prompt:       "What is the rarest blood type?",
				Choices:      []string{"O-", "B-", "AB-", "A-"},
				CorrectIndex: 2,
				Explanation:  "AB- is the rarest blood type, with less than 1% of the population having this type.",
			},
			{
				Prompt:       "How many main blood groups are in the ABO system?",
				Choices:      []string{"2", "4", "6", "8"},
				CorrectIndex: 1,
				Explanation:  "There are 4 main blood groups in the ABO system: A, B, AB, and O.",
			},
			{
				Prompt:       "Approximately how many units of blood are needed every day in the U.S.?",
				Choices:      []string{"13,000", "36,000", "52,000", "75,000"},
				CorrectIndex: 1,
				Explanation:  "About 36,000 units of red blood cells are needed every day in the U.S., with nearly 21 million blood components transfused each year.",
			},
		},
	}
}

// Validate rejects a catalog that could not serve a full round.
func Validate(c domain.TriviaCatalog) error {
	if c.Game == "" {
		return fmt.Errorf("missing game id")
	}
	if len(c.Questions) < RoundLength {
		return fmt.Errorf("%w: have %d, need %d", domain.ErrCatalogTooSmall, len(c.Questions), RoundLength)
	}
	for i, q := range c.Questions {
		if q.Prompt == "" {
			return fmt.Errorf("question %d: missing prompt", i)
		}
		if len(q.Choices) < 2 {
			return fmt.Errorf("question %d: need at least two choices", i)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
			return fmt.Errorf("question %d: correct index %d out of range", i, q.CorrectIndex)
		}
	}
	return nil
}
