package catalog

import "bloodlink-service/internal/domain"

// FaqEntries returns the canned blood-donation Q/A table checked before any
// external call. Order matters: the matcher scans it front to back.
func FaqEntries() []domain.FaqEntry {
	return []domain.FaqEntry{
		{Question: "Who can donate blood?", Answer: "Generally, donors must be at least 17 years old, weigh at least 110 pounds, and be in good health."},
		{Question: "How often can I donate?", Answer: "Whole blood donation can be done every 56 days (8 weeks)."},
		{Question: "What blood types are most needed?", Answer: "All blood types are needed, but O negative is the universal donor type and always in high demand. AB positive is the universal recipient type."},
		{Question: "How long does donation take?", Answer: "The actual blood donation takes only 8-10 minutes, but the entire process including registration, mini-physical, and refreshments takes about an hour."},
		{Question: "Does blood donation hurt?", Answer: "Most people feel only a brief sting from the needle insertion. The donation process itself is typically painless."},
		{Question: "How much blood is taken?", Answer: "A typical whole blood donation is approximately one pint (about 470 ml)."},
		{Question: "Are there any side effects?", Answer: "Some donors might experience mild side effects like lightheadedness, dizziness, or bruising at the needle site."},
		{Question: "What happens to my blood after donation?", Answer: "Your blood is tested, processed, and separated into components (red cells, platelets, plasma), then distributed to hospitals."},
		{Question: "Can I donate if I have a cold?", Answer: "No, you should be feeling well on the day of donation."},
		{Question: "Is it safe to donate during COVID-19?", Answer: "Yes, blood donation centers have implemented enhanced safety protocols to protect donors and staff."},
		{Question: "Can I donate if I have high blood pressure?", Answer: "You may be eligible if your blood pressure is within acceptable limits at the time of donation."},
		{Question: "Can I donate if I have diabetes?", Answer: "Yes, if your diabetes is well-controlled and you feel healthy."},
		{Question: "Can I donate if I have tattoos or piercings?", Answer: "Policies vary by location, but generally if the tattoo was done in a licensed facility and is fully healed, you can donate."},
		{Question: "What should I eat before donating blood?", Answer: "Have a healthy meal and drink plenty of fluids before donating."},
		{Question: "Will donating blood affect my athletic performance?", Answer: "It may temporarily impact intense exercise performance, so it's best to donate on a rest day."},
		{Question: "How quickly does my body replace donated blood?", Answer: "Your body replaces plasma within 24 hours. Red blood cells are replaced within 4-6 weeks."},
		{Question: "What is the difference between whole blood donation and platelet donation?", Answer: "Whole blood donation collects all blood components, while platelet donation specifically collects platelets through a process called apheresis."},
		{Question: "Can I donate if I've recently traveled abroad?", Answer: "Travel to certain countries may temporarily defer donation due to risk of infections like malaria."},
		{Question: "What medications prevent blood donation?", Answer: "Blood thinners, certain acne medications like isotretinoin, and some other prescriptions may prevent donation."},
		{Question: "How will I feel after donating?", Answer: "Most people feel fine after donating. It's recommended to have a snack, drink extra fluids, and avoid strenuous activity for the rest of the day."},
	}
}
