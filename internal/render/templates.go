package render

import "github.com/pavelanni/lessonpress/internal/model"

// DefaultTemplateID returns the fallback template id for a material kind.
func DefaultTemplateID(kind model.Kind) string {
	return string(kind)
}

// DefaultTemplates returns the built-in templates seeded into the store on
// first start. Admins may edit them afterwards, but each must keep the
// structural markers the pipeline relies on: the slide templates wrap every
// slide in class="slide", and explicit page breaks use class="page-break".
func DefaultTemplates() []model.Template {
	return []model.Template{
		{ID: DefaultTemplateID(model.KindLessonPlan), Kind: model.KindLessonPlan, HTML: lessonPlanTemplate},
		{ID: DefaultTemplateID(model.KindSlides), Kind: model.KindSlides, HTML: slidesTemplate},
		{ID: DefaultTemplateID(model.KindActivity), Kind: model.KindActivity, HTML: activityTemplate},
		{ID: DefaultTemplateID(model.KindAssessment), Kind: model.KindAssessment, HTML: assessmentTemplate},
	}
}

const lessonPlanTemplate = `<style>
.document { font-family: Georgia, serif; color: #1a1a2e; }
.document h1 { font-size: 22pt; margin-bottom: 4pt; }
.document h2 { font-size: 14pt; border-bottom: 1px solid #ccc; padding-bottom: 2pt; }
.document table { width: 100%; border-collapse: collapse; }
.document th, .document td { border: 1px solid #999; padding: 4pt 6pt; text-align: left; }
</style>
<div class="document lesson-plan">
  <h1>{{title}}</h1>
  <p class="meta">{{subject}} &middot; {{grade}}</p>
  <h2>Objectives</h2>
  <ul>{{objectives}}</ul>
  <h2>Skills</h2>
  <ul>{{skills}}</ul>
  <h2>Development</h2>
  <table>
    <tr><th>Stage</th><th>Activity</th><th>Time</th><th>Resources</th></tr>
    {{steps}}
  </table>
  <h2>Resources</h2>
  <ul>{{resources}}</ul>
  <h2>Evaluation</h2>
  <div class="evaluation">{{evaluation}}</div>
</div>`

const slidesTemplate = `<style>
.slide { font-family: 'Segoe UI', sans-serif; padding: 24pt; }
.slide h2 { font-size: 28pt; color: #16425b; }
.slide li { font-size: 16pt; margin: 6pt 0; }
</style>
<div class="document slide-deck">
  {{slides}}
</div>`

const activityTemplate = `<style>
.document { font-family: Georgia, serif; }
.question { margin: 10pt 0; }
.question .options li { list-style-type: lower-alpha; }
</style>
<div class="document activity">
  <h1>{{title}}</h1>
  <p class="meta">{{subject}} &middot; {{grade}}</p>
  <h2>Instructions</h2>
  <p>{{instructions}}</p>
  <h2>Questions</h2>
  {{questions}}
</div>`

const assessmentTemplate = `<style>
.document { font-family: Georgia, serif; }
.question { margin: 10pt 0; }
.question .score { float: right; color: #555; }
</style>
<div class="document assessment">
  <h1>{{title}}</h1>
  <p class="meta">{{subject}} &middot; {{grade}} &middot; {{date}}</p>
  <h2>Instructions</h2>
  <p>{{instructions}}</p>
  <h2>Questions</h2>
  {{questions}}
</div>`
