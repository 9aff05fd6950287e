package seed

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/model"
)

// Stable identifiers of the English Proficiency Assessment fixture.
var (
	AssessmentID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

	AudioSectionID    = uuid.MustParse("22222222-2222-2222-2222-222222222221")
	SpeakingSectionID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	ImageSectionID    = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	ReadingSectionID  = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	WritingSectionID  = uuid.MustParse("55555555-1111-1111-1111-111111111111")
)

const speakingInstructions = `---

**Instructions:**
For our NLP models to work accurately, you need to speak for a minimum of 1 minute.
The timer at the bottom of the screen would help you to keep track of your progress.
Start speaking at the end of the countdown. Best of luck!`

const readingPassage = `The transition to renewable energy sources represents one of the most significant shifts in human history. As concerns about climate change intensify and fossil fuel reserves diminish, nations worldwide are investing heavily in solar, wind, and hydroelectric power.

Solar energy has seen remarkable growth in recent years. The cost of photovoltaic panels has dropped by over 80% in the last decade, making solar power increasingly competitive with traditional energy sources. Countries like Germany and China have emerged as leaders in solar installation, while developing nations are leapfrogging traditional infrastructure to embrace clean energy directly.

Wind power, too, has expanded dramatically. Offshore wind farms now dot coastlines from the North Sea to the shores of Asia, generating electricity for millions of homes. Advances in turbine technology have made wind energy more efficient than ever, with modern turbines capable of generating power even in low-wind conditions.

However, challenges remain. The intermittent nature of renewable sources requires innovative storage solutions and grid modernization. Battery technology is evolving rapidly, with new lithium-ion and solid-state batteries promising longer storage capacity and faster charging times.

The economic implications are profound. The renewable energy sector now employs more workers than the fossil fuel industry in many countries. This transition creates opportunities for job creation, economic growth, and energy independence.`

const essayPrompt = `Essay: Write 100–120 words answering this question:

Should companies provide paid time for employees to learn new skills? Give your opinion and explain how it can benefit both the employee and the company.

---

**Instruction:** We recommend writing a minimum of 100 words to help our evaluation engine assess your response effectively and score accurately. A short response may lead to lower scores.

**Note:** Our NLP model excludes special characters from the submitted answer to generate an accurate result. Please avoid excessive use to get an accurate score.

---

Many people learn important skills in the workplace. Write about a work-related skill that you think is useful in your job. Your essay can include the following points:

• Describe the skill and where you learned it.
• Explain why this skill is important at work.
• Give one example of how it is used in your job.`

// Assessment builds the English Proficiency Assessment: five sections and
// nine questions.
func Assessment() *model.Assessment {
	a := &model.Assessment{
		ID:          AssessmentID,
		Title:       "English Proficiency Assessment",
		Description: "A comprehensive assessment testing listening, visual comprehension, reading, and writing skills.",
		IsActive:    true,
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	a.Sections = []model.Section{
		{
			ID:           AudioSectionID,
			Type:         model.SectionTypeAudio,
			DisplayOrder: 1,
			Audio: &model.AudioContent{
				AudioURL:   "/assets/audio/listening-audio.mp3",
				Transcript: "Meeting discussion about sales performance, customer support improvements, and quarterly results.",
			},
			Questions: []model.Question{
				question(model.QuestionRecord{
					ID:   uuid.MustParse("55555555-5555-5555-5555-555555555501"),
					Text: "Which statements are correct about today's meeting?",
					Type: model.QuestionTypeMAQ,
					Options: options(
						"A) Sales went up last quarter, but some problems remained.",
						"B) Customer support was not discussed in the meeting.",
						"C) The team plans to improve how they help customers this quarter.",
						"D) No action was decided during the meeting.",
					),
					CorrectAnswer: "A,C",
					DisplayOrder:  1,
				}),
				question(model.QuestionRecord{
					ID:   uuid.MustParse("55555555-5555-5555-5555-555555555502"),
					Text: "Which statements are correct about the last quarter?",
					Type: model.QuestionTypeMAQ,
					Options: options(
						"A) Several actions were agreed upon.",
						"B) Last quarter's results were all positive.",
						"C) The meeting was about next year's budget.",
						"D) Response times were slower than the target.",
					),
					CorrectAnswer: "B,D",
					DisplayOrder:  2,
				}),
				question(model.QuestionRecord{
					ID:   uuid.MustParse("55555555-5555-5555-5555-555555555503"),
					Text: "How does the speaker view the sales performance overall?",
					Type: model.QuestionTypeMCQ,
					Options: options(
						"A) As disappointing despite expectations",
						"B) As positive but needing further improvement",
						"C) As unchanged from previous quarters",
						"D) As unrelated to customer satisfaction",
					),
					CorrectAnswer: "B",
					DisplayOrder:  3,
				}),
			},
		},
		{
			ID:           SpeakingSectionID,
			Type:         model.SectionTypeSpeaking,
			DisplayOrder: 2,
			Questions: []model.Question{
				question(model.QuestionRecord{
					ID: uuid.MustParse("55555555-5555-5555-5555-555555555601"),
					Text: `Please speak into the microphone.

Talk about activities you do to relax after work. Your response can include the following points:

• What type of activities do you like to do after work?
• Is there a specific time you usually start relaxing?
• Do you usually do these activities alone or with others?
• How do these activities help you relax?

` + speakingInstructions,
					Type:         model.QuestionTypeSpeaking,
					DisplayOrder: 1,
				}),
			},
		},
		{
			ID:           ImageSectionID,
			Type:         model.SectionTypeImage,
			DisplayOrder: 3,
			Image: &model.ImageContent{
				ImageURL: "/assets/images/horse-grazing.jpg",
				AltText:  "A horse eating grass on a green field",
			},
			Questions: []model.Question{
				question(model.QuestionRecord{
					ID: uuid.MustParse("66666666-6666-6666-6666-666666666661"),
					Text: `Please look at the camera and speak into the microphone.

Look at the image and describe what you see:

• What can you see in the photo?
• Where is the scene taking place?
• What is the animal doing?
• Describe the environment and surroundings.

` + speakingInstructions,
					Type:         model.QuestionTypeSpeaking,
					DisplayOrder: 1,
				}),
			},
		},
		{
			ID:           ReadingSectionID,
			Type:         model.SectionTypeReading,
			DisplayOrder: 4,
			Reading: &model.ReadingContent{
				Title:   "The Future of Renewable Energy",
				Passage: readingPassage,
			},
			Questions: []model.Question{
				question(model.QuestionRecord{
					ID:   uuid.MustParse("77777777-7777-7777-7777-777777777771"),
					Text: "What has happened to the cost of solar panels over the last decade?",
					Type: model.QuestionTypeMCQ,
					Options: options(
						"A) Increased by 80%",
						"B) Dropped by over 80%",
						"C) Remained stable",
						"D) Fluctuated unpredictably",
					),
					CorrectAnswer: "B",
					DisplayOrder:  1,
				}),
				question(model.QuestionRecord{
					ID:   uuid.MustParse("77777777-7777-7777-7777-777777777772"),
					Text: "Which countries are mentioned as leaders in solar installation?",
					Type: model.QuestionTypeMCQ,
					Options: options(
						"A) USA and UK",
						"B) Germany and China",
						"C) India and Japan",
						"D) France and Italy",
					),
					CorrectAnswer: "B",
					DisplayOrder:  2,
				}),
				question(model.QuestionRecord{
					ID:            uuid.MustParse("77777777-7777-7777-7777-777777777773"),
					Text:          "The renewable energy sector employs more workers than the fossil fuel industry in many countries.",
					Type:          model.QuestionTypeTrueFalse,
					CorrectAnswer: "True",
					DisplayOrder:  3,
				}),
			},
		},
		{
			ID:           WritingSectionID,
			Type:         model.SectionTypeWriting,
			DisplayOrder: 5,
			Questions: []model.Question{
				question(model.QuestionRecord{
					ID:           uuid.MustParse("88888888-8888-8888-8888-888888888801"),
					Text:         essayPrompt,
					Type:         model.QuestionTypeWriting,
					DisplayOrder: 1,
				}),
			},
		},
	}

	for i := range a.Sections {
		s := &a.Sections[i]
		s.AssessmentID = a.ID
		for j := range s.Questions {
			s.Questions[j].SectionID = s.ID
		}
	}
	return a
}

func question(r model.QuestionRecord) model.Question {
	r.Score = 1
	return r.Question()
}

func options(opts ...string) string {
	raw, _ := json.Marshal(opts)
	return string(raw)
}
